package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/hems/app"
	"github.com/kilianp07/hems/core/model"
)

func TestPrintReports(t *testing.T) {
	var buf bytes.Buffer
	printReports(&buf, []app.Report{
		{
			Scenario: "base",
			Spec:     model.SystemSpec{BatteryKWh: 10, PVKW: 5},
			Summary:  model.Summary{Days: 2, Total: 3, OnlyUncontrolledLoad: 5.5},
		},
		{Scenario: "tiny", Err: errors.New("infeasible")},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "savings")
	assert.Regexp(t, `base\s+10\s+5\s+2\s+3\.00\s+5\.50\s+2\.50\s+0\.0\s+ok`, lines[1])
	assert.Contains(t, lines[2], "failed")
}
