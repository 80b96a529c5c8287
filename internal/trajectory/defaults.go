package trajectory

// Resting baseline values shown before any parameter has been touched
var globalDefaults = map[string]float64{
	// blood gas
	"caSys_pH":    7.35,
	"cvSys_pH":    7.40,
	"caSys_pCO2":  40.0,
	"cvSys_pCO2":  45.0,
	"caSys_pO2":   349.0,
	"cvSys_pO2":   44.0,
	"caSys_HCO3":  24.0,
	"cvSys_HCO3":  23.0,
	"caSys_O2sat": 99.86,
	"cvSys_O2sat": 67.15,
	"caSys_BE":    0.1,
	"bgDO2":       917.0,

	// circuit
	"ecmoUnitFlow": 7.00,
	"ecmop1":       -22.0,

	// pressures
	"paosys": 120.0,
	"paodia": 75.0,
	"paoavg": 90.0,
	"pcv":    5.0,
	"ppcw":   10.0,
	"ppasys": 25.0,
	"ppadia": 10.0,

	"col": 1.67,
	"cor": 1.67,
	"svr": 17.5,
}

// GlobalDefault returns the resting value of an output key
func GlobalDefault(key string) (float64, bool) {
	v, ok := globalDefaults[key]
	return v, ok
}
