package output

// Printer renders command results to stdout.
type Printer interface {
	Print(v any) error
}

// StatusOutput summarizes a control endpoint's state.
type StatusOutput struct {
	Endpoint string `json:"endpoint"`
	UpdateID uint64 `json:"updateId"`
}
