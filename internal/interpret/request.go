package interpret

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/kartoza/ecmo-explorer/internal/models"
	"github.com/kartoza/ecmo-explorer/internal/scenario"
	"github.com/kartoza/ecmo-explorer/internal/trajectory"
	"github.com/zeebo/xxh3"
)

// BuildRequest builds the interpretation payload for a trajectory: the first
// and last points formatted to two decimals plus the edit that produced it.
func BuildRequest(reg *scenario.Registry, sc scenario.Scenario, param string, points []trajectory.Point) models.InterpretRequest {
	req := models.InterpretRequest{
		ScenarioType:  string(sc),
		Parameter:     reg.Label(sc, param),
		InitialValues: map[string]string{},
		FinalValues:   map[string]string{},
	}
	if len(points) == 0 {
		return req
	}

	first, last := points[0], points[len(points)-1]
	req.InitialValues = formatValues(first.Values)
	req.FinalValues = formatValues(last.Values)
	req.ParameterChange = models.ParameterChange{
		From: trajectory.FormatValue(first.InputValue),
		To:   trajectory.FormatValue(last.InputValue),
	}
	return req
}

func formatValues(values map[string]float64) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = trajectory.FormatValue(v)
	}
	return out
}

// Key identifies an interpretation by scenario, parameter and trajectory content
func Key(sc scenario.Scenario, param string, points []trajectory.Point) string {
	return fmt.Sprintf("%s|%s|%016x", sc, param, Fingerprint(points))
}

// Fingerprint hashes a trajectory independent of map iteration order
func Fingerprint(points []trajectory.Point) uint64 {
	var buf []byte
	for _, p := range points {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(p.Time))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p.InputValue))

		keys := make([]string, 0, len(p.Values))
		for k := range p.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			buf = append(buf, k...)
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p.Values[k]))
		}
		buf = append(buf, ';')
	}
	return xxh3.Hash(buf)
}
