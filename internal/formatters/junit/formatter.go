// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package junit

import (
	"encoding/xml"
	"fmt"
	"path/filepath"

	"ja-redact/internal/formatters"
)

// JUnit XML structures based on the standard JUnit XML schema
type TestSuites struct {
	XMLName    xml.Name    `xml:"testsuites"`
	Name       string      `xml:"name,attr"`
	Tests      int         `xml:"tests,attr"`
	Failures   int         `xml:"failures,attr"`
	Errors     int         `xml:"errors,attr"`
	Time       string      `xml:"time,attr"`
	TestSuites []TestSuite `xml:"testsuite"`
}

type TestSuite struct {
	XMLName   xml.Name   `xml:"testsuite"`
	Name      string     `xml:"name,attr"`
	Tests     int        `xml:"tests,attr"`
	Failures  int        `xml:"failures,attr"`
	Errors    int        `xml:"errors,attr"`
	Time      string     `xml:"time,attr"`
	TestCases []TestCase `xml:"testcase"`
}

type TestCase struct {
	XMLName   xml.Name `xml:"testcase"`
	Name      string   `xml:"name,attr"`
	ClassName string   `xml:"classname,attr"`
	Time      string   `xml:"time,attr"`
	Failure   *Failure `xml:"failure,omitempty"`
	SystemOut string   `xml:"system-out,omitempty"`
}

type Failure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// Formatter implements JUnit XML output formatting
type Formatter struct{}

// NewFormatter creates a new JUnit XML formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "junit"
}

func (f *Formatter) Description() string {
	return "JUnit XML format for CI/CD integration, one test case per document"
}

func (f *Formatter) FileExtension() string {
	return ".xml"
}

// Format maps every document to a test case; documents that failed to
// redact are failures.
func (f *Formatter) Format(report *formatters.Report, options formatters.FormatterOptions) (string, error) {
	suite := TestSuite{
		Name:      "redaction",
		Time:      seconds(report.Summary.DurationMS),
		TestCases: []TestCase{},
	}

	for _, file := range report.Files {
		tc := TestCase{
			Name:      filepath.Base(file.Path),
			ClassName: "redaction",
			Time:      seconds(file.DurationMS),
		}
		if file.Failed() {
			tc.Failure = &Failure{
				Message: fmt.Sprintf("%s failed", file.ErrorType),
				Type:    file.ErrorType,
				Content: file.Error,
			}
			suite.Failures++
		} else if options.Verbose {
			tc.SystemOut = fmt.Sprintf("%d redactions written to %s", file.Redactions, file.Output)
		}
		suite.TestCases = append(suite.TestCases, tc)
		suite.Tests++
	}

	suites := TestSuites{
		Name:       report.Tool,
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Time:       suite.Time,
		TestSuites: []TestSuite{suite},
	}

	xmlData, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JUnit XML: %w", err)
	}

	return xml.Header + string(xmlData), nil
}

func seconds(msec float64) string {
	return fmt.Sprintf("%.3f", msec/1000)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
