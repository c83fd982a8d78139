package backend

import (
	"context"
	"strings"
)

// ProbeReport says which configured candidates the backend serves.
type ProbeReport struct {
	Models    []string `json:"models"`
	Available []string `json:"available"`
	Unknown   []string `json:"unknown"`
}

// Probe lists the backend's models once and splits candidates into known
// and unknown names (case-insensitive).
func Probe(ctx context.Context, t Transport, candidates []string) (ProbeReport, error) {
	models, err := t.Models(ctx)
	if err != nil {
		return ProbeReport{}, err
	}
	served := make(map[string]bool, len(models))
	for _, m := range models {
		served[strings.ToLower(m)] = true
	}
	report := ProbeReport{Models: models}
	for _, c := range candidates {
		if served[strings.ToLower(c)] {
			report.Available = append(report.Available, c)
		} else {
			report.Unknown = append(report.Unknown, c)
		}
	}
	return report, nil
}
