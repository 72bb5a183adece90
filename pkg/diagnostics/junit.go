package diagnostics

import (
	"encoding/xml"
	"fmt"
	"io"
)

type junitFailure struct {
	XMLName xml.Name `xml:"failure"`
	Message string   `xml:"message,attr"`
	Type    string   `xml:"type,attr"`
	Text    string   `xml:",chardata"`
}

type junitTestcase struct {
	XMLName   xml.Name       `xml:"testcase"`
	Name      string         `xml:"name,attr"`
	ClassName string         `xml:"classname,attr"`
	Time      string         `xml:"time,attr"`
	Failures  []junitFailure `xml:"failure"`
}

type junitTestsuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Time      string          `xml:"time,attr"`
	Testcases []junitTestcase `xml:"testcase"`
}

type junitTestsuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Suites   []junitTestsuite `xml:"testsuite"`
}

// WriteJUnit renders summary as the standard
// testsuites > testsuite > testcase [> failure] schema §6.2 names: one
// testsuite per file, one testcase per file (pass/fail at file
// granularity), with one nested failure per diagnostic the file raised.
func WriteJUnit(w io.Writer, summary Summary) error {
	doc := junitTestsuites{Tests: summary.Total, Failures: summary.Failed}

	for _, r := range summary.Results {
		tc := junitTestcase{
			Name:      r.File,
			ClassName: summary.Suite,
			Time:      fmt.Sprintf("%.6f", r.DurationSecs),
		}

		for _, d := range r.Diagnostics {
			tc.Failures = append(tc.Failures, junitFailure{
				Message: d.Message,
				Type:    fmt.Sprintf("%s[%s]", d.Severity, d.Code),
				Text:    fmt.Sprintf("%s:%d:%d: %s", d.File, d.Span.Line, d.Span.Col, d.Message),
			})
		}

		failures := 0
		if !r.Passed {
			failures = len(tc.Failures)
			if failures == 0 {
				failures = 1
			}
		}

		doc.Suites = append(doc.Suites, junitTestsuite{
			Name:      r.File,
			Tests:     1,
			Failures:  failures,
			Time:      tc.Time,
			Testcases: []junitTestcase{tc},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	if err := enc.Encode(doc); err != nil {
		return err
	}

	_, err := io.WriteString(w, "\n")

	return err
}
