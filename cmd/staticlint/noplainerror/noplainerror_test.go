package noplainerror_test

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/Totarae/bookmarks/cmd/staticlint/noplainerror"
)

func TestAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), noplainerror.Analyzer, "handlers", "other")
}
