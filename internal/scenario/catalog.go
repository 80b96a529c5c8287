package scenario

// builtinDefinitions returns the four walkthroughs shipped with the application.
// Parameter ranges match the slider ranges the prediction models were trained on.
// Defaults are placeholder mid-range outputs shown before a prediction arrives;
// they are not clinically sourced.
func builtinDefinitions() []*Definition {
	return []*Definition{
		oxygenation(),
		hemodynamics(),
		cardiovascular(),
		ecmoParameters(),
	}
}

func oxygenation() *Definition {
	return &Definition{
		Scenario: ScenarioOxygenation,
		Title:    "Oxygenation",
		Parameters: []ParameterSpec{
			{Key: "hb", Label: "Hemoglobin", Min: 5, Max: 20, Step: 0.5, Unit: "g/dL"},
			{Key: "mvo2", Label: "Mixed venous oxygen", Min: 100, Max: 1500, Step: 5, Unit: "mL/min"},
			{Key: "dlco", Label: "Diffusion capacity", Min: 1, Max: 100, Step: 1, Unit: "mL/min/mmHg"},
			{Key: "shunt_fraction", Label: "Shunt fraction", Min: 0, Max: 100, Step: 1, Unit: "%"},
			{Key: "fdo2", Label: "Fraction of delivered oxygen", Min: 0.21, Max: 1, Step: 0.05, Unit: ""},
		},
		Steps: []Step{
			{ID: "intro", Header: "Introduction"},
			{ID: "hb", Header: "Hemoglobin", Parameter: "hb"},
			{ID: "mvo2", Header: "Mixed Venous Oxygen", Parameter: "mvo2"},
			{ID: "dlco", Header: "Diffusing Capacity", Parameter: "dlco"},
			{ID: "shunt", Header: "Shunt Fraction", Parameter: "shunt_fraction"},
			{ID: "fdo2", Header: "Fraction of Delivered Oxygen", Parameter: "fdo2"},
		},
		Outputs: map[string][]string{
			"hb":             {"bgDO2", "caSys_O2sat", "cvSys_O2sat"},
			"mvo2":           {"bgDO2", "caSys_pO2", "cvSys_pCO2", "caSys_HCO3"},
			"dlco":           {"caSys_pO2", "cvSys_pO2", "caSys_pCO2", "cvSys_pCO2"},
			"shunt_fraction": {"caSys_pO2", "caSys_O2sat", "cvSys_pO2", "cvSys_O2sat", "caSys_pH", "cvSys_pH"},
			"fdo2":           {"caSys_pO2", "cvSys_pO2", "caSys_O2sat", "cvSys_O2sat", "bgDO2"},
		},
		Defaults: map[string]map[string]float64{
			"hb":             {"bgDO2": 352.7, "cvSys_O2sat": 48.2},
			"mvo2":           {"bgDO2": 917.0, "cvSys_pCO2": 41.3},
			"dlco":           {"caSys_pO2": 62.4, "cvSys_pO2": 31.8},
			"shunt_fraction": {"caSys_pO2": 349.0, "cvSys_pO2": 44.0},
			"fdo2":           {"caSys_pO2": 88.5, "caSys_O2sat": 95.1, "bgDO2": 874.2},
		},
	}
}

func hemodynamics() *Definition {
	return &Definition{
		Scenario: ScenarioHemodynamics,
		Title:    "Hemodynamics",
		Parameters: []ParameterSpec{
			{Key: "arterial_r", Label: "Arterial resistance", Min: 0, Max: 60, Step: 0.1, Unit: "mmHg·s/mL"},
			{Key: "venous_r", Label: "Venous resistance", Min: 0, Max: 600, Step: 0.1, Unit: "mmHg·s/mL"},
			{Key: "pvr", Label: "Pulmonary vascular resistance", Min: 0, Max: 80, Step: 0.1, Unit: "woods units"},
			{Key: "svr", Label: "Systemic vascular resistance", Min: 1, Max: 100, Step: 0.1, Unit: "woods units"},
		},
		Steps: []Step{
			{ID: "intro", Header: "Introduction"},
			{ID: "arterial", Header: "Arterial Resistance", Parameter: "arterial_r"},
			{ID: "venous", Header: "Venous Resistance", Parameter: "venous_r"},
			{ID: "pvr", Header: "Pulmonary Vascular Resistance", Parameter: "pvr"},
			{ID: "svr", Header: "Systemic Vascular Resistance", Parameter: "svr"},
		},
		Outputs: map[string][]string{
			"arterial_r": {"paosys", "paodia", "paoavg", "col", "cor"},
			"venous_r":   {"bgDO2", "caSys_O2sat", "cvSys_O2sat", "ecmoUnitFlow"},
			"pvr":        {"caSys_pCO2", "cvSys_pO2", "caSys_pH", "caSys_HCO3"},
			"svr":        {"caSys_O2sat", "caSys_pH", "cvSys_HCO3"},
		},
		Defaults: map[string]map[string]float64{
			"arterial_r": {"paosys": 104.0, "paodia": 61.0, "paoavg": 75.3},
			"venous_r":   {"ecmoUnitFlow": 4.1},
			"pvr":        {"caSys_pCO2": 38.6, "cvSys_pO2": 42.1},
			"svr":        {"cvSys_HCO3": 23.4},
		},
	}
}

func cardiovascular() *Definition {
	return &Definition{
		Scenario: ScenarioCardiovascular,
		Title:    "Cardiovascular",
		Parameters: []ParameterSpec{
			{Key: "cv_heartrate_value", Label: "Heart rate", Min: 40, Max: 210, Step: 1, Unit: "bpm"},
			{Key: "cv_volume_value", Label: "Volume status", Min: 200, Max: 5000, Step: 5, Unit: "mL"},
			{Key: "cv_eeslv_value", Label: "Left ventricular contractility", Min: 0.2, Max: 10, Step: 0.1, Unit: "mmHg/mL"},
			{Key: "cv_eesrv_value", Label: "Right ventricular contractility", Min: 0.5, Max: 5, Step: 0.1, Unit: "mmHg/mL"},
		},
		Steps: []Step{
			{ID: "intro", Header: "Introduction"},
			{ID: "hr", Header: "Heart Rate", Parameter: "cv_heartrate_value"},
			{ID: "volume", Header: "Volume Status", Parameter: "cv_volume_value"},
			{ID: "lv", Header: "LV Contractility", Parameter: "cv_eeslv_value"},
			{ID: "rv", Header: "RV Contractility", Parameter: "cv_eesrv_value"},
		},
		Outputs: map[string][]string{
			"cv_heartrate_value": {"ecmoUnitFlow", "pcv", "svr"},
			"cv_volume_value":    {"ecmop1", "ppcw", "ppasys", "paodia", "col", "cor"},
			"cv_eeslv_value":     {"ecmoUnitFlow", "caSys_O2sat", "pcv", "ppcw"},
			"cv_eesrv_value":     {"ppasys", "ppcw", "caSys_BE", "bgDO2"},
		},
		Defaults: map[string]map[string]float64{
			"cv_heartrate_value": {"ecmoUnitFlow": 3.8, "pcv": 6.0},
			"cv_volume_value":    {"ecmop1": -35.0, "ppcw": 4.0, "col": 0.9, "cor": 0.9},
			"cv_eeslv_value":     {"caSys_O2sat": 97.4, "ppcw": 18.0},
			"cv_eesrv_value":     {"ppasys": 38.0, "caSys_BE": -1.2},
		},
		Aliases: map[string]string{
			"cv_heartrate_value": "heart_rate",
			"cv_volume_value":    "volume",
			"cv_eeslv_value":     "eeslv",
			"cv_eesrv_value":     "eesrv",
		},
	}
}

func ecmoParameters() *Definition {
	return &Definition{
		Scenario: ScenarioECMOParameters,
		Title:    "ECMO Parameters",
		Parameters: []ParameterSpec{
			{Key: "rpm", Label: "ECMO pump speed", Min: 0.6, Max: 6.7, Step: 0.1, Unit: "RPM"},
			{Key: "oxygenator_resistance", Label: "Oxygenator resistance", Min: 0, Max: 200, Step: 0.1, Unit: "mmHg/L/min"},
			{Key: "sweep_flow", Label: "Sweep gas flow", Min: 0, Max: 10, Step: 0.5, Unit: "L/min"},
			{Key: "diffusion", Label: "Membrane diffusion", Min: 0.0001, Max: 0.01, Step: 0.0001, Unit: "L/min"},
		},
		Steps: []Step{
			{ID: "intro", Header: "Introduction"},
			{ID: "rpm", Header: "ECMO Speed", Parameter: "rpm"},
			{ID: "oxygenator_resistance", Header: "Oxygenator Resistance", Parameter: "oxygenator_resistance"},
			{ID: "sweep", Header: "Sweep Gas Flow", Parameter: "sweep_flow"},
			{ID: "diffusion", Header: "Diffusion", Parameter: "diffusion"},
		},
		Outputs: map[string][]string{
			"rpm":                   {"ppadia", "caSys_pO2", "cvSys_pO2", "caSys_pCO2"},
			"oxygenator_resistance": {"ecmoUnitFlow", "caSys_O2sat", "cvSys_O2sat", "caSys_pO2", "cvSys_pO2", "bgDO2"},
			"sweep_flow":            {"caSys_BE", "caSys_pH", "cvSys_pH", "bgDO2", "caSys_pO2", "cvSys_pO2"},
			"diffusion":             {"caSys_pO2", "cvSys_pO2", "bgDO2", "paodia"},
		},
		Defaults: map[string]map[string]float64{
			"rpm":                   {"ppadia": 12.0, "caSys_pO2": 71.0},
			"oxygenator_resistance": {"ecmoUnitFlow": 7.0, "bgDO2": 917.0},
			"sweep_flow":            {"caSys_pH": 7.21, "cvSys_pH": 7.18},
			"diffusion":             {"caSys_pO2": 54.0, "cvSys_pO2": 29.0},
		},
	}
}
