package artifact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanComponentCode_StripsImportsAndExports(t *testing.T) {
	code := `import React from 'react';
export default MyChart;
const MyChart = () => {
  return (<div><span>x</span></div>);
};
export default MyChart;`

	cleaned := cleanComponentCode(code)
	assert.NotContains(t, cleaned, "import React")
	assert.NotContains(t, cleaned, "export default")
}

func TestCleanComponentCode_AddsMissingTerminator(t *testing.T) {
	code := `const MyChart = () => {
  return (<div><span>x</span></div>);
}`
	cleaned := cleanComponentCode(code)
	assert.True(t, strings.HasSuffix(cleaned, "};"))
}

func TestCleanComponentCode_AddsFullTerminatorWhenMissingBrace(t *testing.T) {
	code := `const MyChart = () => {
  return (<div><span>x</span></div>);`
	cleaned := cleanComponentCode(code)
	assert.True(t, strings.HasSuffix(cleaned, "\n};"))
}
