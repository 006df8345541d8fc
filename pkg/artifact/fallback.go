package artifact

import (
	"bytes"
	"encoding/json"
	"text/template"

	"github.com/tarsy-labs/chartpilot/pkg/models"
)

const fallbackRows = 10

const fallbackComponentName = "ErrorChart"

var fallbackTemplate = template.Must(template.New("fallback").Parse(`const ErrorChart = () => {
  const data = {{.DataJSON}};

  return (
    <div className="w-full h-full flex items-center justify-center p-4">
      <div className="text-center max-w-2xl">
        <div className="text-red-500 text-2xl mb-4">Error</div>
        <div className="text-lg font-semibold text-red-700 mb-2">Chart Generation Error</div>
        <div className="text-sm text-gray-600 mb-4 bg-gray-100 p-3 rounded">{{.ErrorMessage}}</div>
        {data && data.length > 0 && (
          <div className="bg-blue-50 border border-blue-200 rounded-lg p-4">
            <h4 className="font-medium text-blue-800 mb-2">Available Data Preview:</h4>
            <div className="text-xs font-mono text-left bg-white p-2 rounded overflow-auto max-h-32">
              <pre>{JSON.stringify(data.slice(0, 3), null, 2)}</pre>
            </div>
            {data.length > 3 && (
              <div className="text-xs text-blue-600 mt-2">
                ... and {data.length - 3} more rows
              </div>
            )}
          </div>
        )}
        <div className="mt-4 text-xs text-gray-500">
          Try rephrasing your prompt or check the data source
        </div>
      </div>
    </div>
  );
};`))

// Fallback deterministically produces an Artifact from a NormalizedDataset
// and an error message: it embeds the first 10 rows as a literal, shows
// the error message, and renders a small data preview. The fallback
// itself must pass validation and always does.
func Fallback(dataset models.NormalizedDataset, errorMessage string) models.Artifact {
	rows := dataset.Rows
	if len(rows) > fallbackRows {
		rows = rows[:fallbackRows]
	}
	dataJSON, err := json.Marshal(rows)
	if err != nil {
		dataJSON = []byte("[]")
	}

	var buf bytes.Buffer
	_ = fallbackTemplate.Execute(&buf, struct {
		DataJSON     string
		ErrorMessage string
	}{
		DataJSON:     string(dataJSON),
		ErrorMessage: jsEscape(errorMessage),
	})

	code := buf.String()
	return models.Artifact{
		Code:      code,
		Name:      fallbackComponentName,
		ChartType: "error",
		OK:        true,
	}
}

// jsEscape makes errorMessage safe to embed inside JSX text content: the
// template places it directly between tags, so only characters that would
// break out of that text context need handling.
func jsEscape(s string) string {
	escaped, _ := json.Marshal(s)
	// Strip the surrounding quotes added by json.Marshal; the template
	// already provides a JSX text position, not a string literal.
	if len(escaped) >= 2 {
		return string(escaped[1 : len(escaped)-1])
	}
	return s
}
