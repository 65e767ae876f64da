package initorder_test

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"omibyte.io/exti/analysis/initorder"
)

func TestAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), initorder.Analyzer, "a")
}
