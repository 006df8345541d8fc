package artifact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const validComponent = `const SalesChart = () => {
  const data = [{"category": "a", "value": 1}];

  return (
    <div className="w-full h-full p-4">
      <ResponsiveContainer width="100%" height="90%">
        <BarChart data={data}>
          <XAxis dataKey="category" />
          <YAxis />
          <Bar dataKey="value" fill="#8884d8" />
        </BarChart>
      </ResponsiveContainer>
    </div>
  );
};`

func TestValidate_AcceptsWellFormedComponent(t *testing.T) {
	errs := Validate(validComponent, "SalesChart")
	assert.Empty(t, errs)
}

func TestValidate_RejectsTooShort(t *testing.T) {
	errs := Validate("const X = () => { return (<div/>); };", "X")
	assert.Contains(t, strings.Join(errs, "|"), "shorter than")
}

func TestValidate_RejectsNameMismatch(t *testing.T) {
	errs := Validate(validComponent, "RevenueChart")
	found := false
	for _, e := range errs {
		if strings.Contains(e, "does not match artifact_name") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_RejectsMissingDeclaration(t *testing.T) {
	code := `function helper() { return 1; }
` + strings.Repeat("x", 60)
	errs := Validate(code, "")
	found := false
	for _, e := range errs {
		if strings.Contains(e, "component declaration") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_RejectsMissingRenderExpression(t *testing.T) {
	code := `const X = () => {
  const data = [1,2,3,4,5,6,7,8,9,10];
  return data.length;
};`
	errs := Validate(code, "X")
	found := false
	for _, e := range errs {
		if strings.Contains(e, "render expression") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_RejectsEval(t *testing.T) {
	code := validComponent + "\n// eval(userInput);"
	errs := Validate(code, "SalesChart")
	found := false
	for _, e := range errs {
		if strings.Contains(e, "eval") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_RejectsDangerouslySetInnerHTML(t *testing.T) {
	code := `const X = () => {
  return (
    <div dangerouslySetInnerHTML={{__html: userInput}}>
      <span>text</span>
    </div>
  );
};`
	errs := Validate(code, "X")
	assert.NotEmpty(t, errs)
}
