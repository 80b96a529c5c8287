package models

// PredictRequest is the body of POST /api/predict on the prediction backend
type PredictRequest struct {
	Scenario      string             `json:"scenario"`
	Parameter     string             `json:"parameter"`
	InitialValue  float64            `json:"initialValue"`
	TargetValue   float64            `json:"targetValue"`
	InitialStates map[string]float64 `json:"initialStates"`
}

// ParameterChange describes the edit being interpreted, formatted to two decimals
type ParameterChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// InterpretRequest is the body of POST /api/interpret on the prediction backend
type InterpretRequest struct {
	ScenarioType    string            `json:"scenarioType"`
	Parameter       string            `json:"parameter"`
	InitialValues   map[string]string `json:"initialValues"`
	FinalValues     map[string]string `json:"finalValues"`
	ParameterChange ParameterChange   `json:"parameterChange"`
}

// InterpretResponse contains the narrative explanation of a trajectory
type InterpretResponse struct {
	Interpretation string `json:"interpretation"`
}

// ErrorResponse is returned by the backend and the local API on failure
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by GET /api/health
type HealthResponse struct {
	Status string `json:"status"`
}

// SelectScenarioRequest starts a new session on a scenario
type SelectScenarioRequest struct {
	Scenario string `json:"scenario"`
}

// SetStepRequest selects the active walkthrough step parameter
type SetStepRequest struct {
	Parameter string `json:"parameter"`
}

// SetParameterRequest edits one parameter
type SetParameterRequest struct {
	Value *float64 `json:"value"`
}

// SetParameterResponse echoes the stored (clamped) value
type SetParameterResponse struct {
	Key       string  `json:"key"`
	Requested float64 `json:"requested"`
	Stored    float64 `json:"stored"`
	Sequence  uint64  `json:"sequence,omitempty"`
}
