package listing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func input(t *testing.T, body string) Input {
	t.Helper()
	in, err := DecodeInput(strings.NewReader(body))
	require.NoError(t, err)
	return in
}

func violationFields(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, len(verr.Violations))
	for i, v := range verr.Violations {
		fields[i] = v.Field
	}
	return fields
}

const validBody = `{
	"title": "  Dune  ",
	"author": "Frank Herbert",
	"genre": "Science Fiction",
	"condition": "good",
	"price": 12.50,
	"description": "A desert planet epic saga."
}`

func TestValidateDraft_Valid(t *testing.T) {
	d, err := ValidateDraft(input(t, validBody))
	require.NoError(t, err)
	assert.Equal(t, "Dune", d.Title)
	assert.Equal(t, ConditionGood, d.Condition)
	require.NotNil(t, d.Price)
	assert.Equal(t, 12.5, *d.Price)
}

func TestValidateDraft_PriceAndDescription(t *testing.T) {
	body := `{"title":"Dune","author":"Frank Herbert","genre":"Science Fiction","condition":"good","price":0,"description":"short"}`
	_, err := ValidateDraft(input(t, body))
	assert.Equal(t, []string{"price", "description"}, violationFields(t, err))
}

func TestValidateDraft_AllMissing(t *testing.T) {
	_, err := ValidateDraft(input(t, `{}`))
	assert.Equal(t, []string{"title", "author", "genre", "condition", "price", "description"}, violationFields(t, err))
}

func TestValidateDraft_Bounds(t *testing.T) {
	base := func(field, value string) string {
		fields := map[string]string{
			"title":       `"Dune"`,
			"author":      `"Frank Herbert"`,
			"genre":       `"Science Fiction"`,
			"condition":   `"good"`,
			"price":       `12.5`,
			"description": `"A desert planet epic saga."`,
		}
		fields[field] = value
		parts := make([]string, 0, len(fields))
		for k, v := range fields {
			parts = append(parts, `"`+k+`":`+v)
		}
		return "{" + strings.Join(parts, ",") + "}"
	}

	tests := []struct {
		name  string
		field string
		value string
		valid bool
	}{
		{"price minimum", "price", `0.01`, true},
		{"price maximum", "price", `10000`, true},
		{"price above maximum", "price", `10000.01`, false},
		{"price below a cent", "price", `0.001`, false},
		{"price rounding to zero", "price", `0.004`, false},
		{"price with three decimals", "price", `12.345`, false},
		{"price string with three decimals", "price", `"12.345"`, false},
		{"negative price", "price", `-5`, false},
		{"numeric string price", "price", `"19.99"`, true},
		{"non-numeric price", "price", `"abc"`, false},
		{"price wrong type", "price", `true`, false},
		{"description 20 chars", "description", `"` + strings.Repeat("a", 20) + `"`, true},
		{"description 19 chars", "description", `"` + strings.Repeat("a", 19) + `"`, false},
		{"description padded to 20", "description", `"  ` + strings.Repeat("a", 19) + `  "`, false},
		{"description 1000 chars", "description", `"` + strings.Repeat("a", 1000) + `"`, true},
		{"description 1001 chars", "description", `"` + strings.Repeat("a", 1001) + `"`, false},
		{"title 200 chars", "title", `"` + strings.Repeat("t", 200) + `"`, true},
		{"title 201 chars", "title", `"` + strings.Repeat("t", 201) + `"`, false},
		{"blank title", "title", `"   "`, false},
		{"title wrong type", "title", `5`, false},
		{"author 101 chars", "author", `"` + strings.Repeat("a", 101) + `"`, false},
		{"unknown genre", "genre", `"Cookbooks"`, false},
		{"genre is case sensitive", "genre", `"fiction"`, false},
		{"unknown condition", "condition", `"mint"`, false},
		{"every condition", "condition", `"like-new"`, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateDraft(input(t, base(tc.field, tc.value)))
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, []string{tc.field}, violationFields(t, err))
		})
	}
}

func TestValidateDraft_ImageURL(t *testing.T) {
	body := strings.TrimSuffix(strings.TrimSpace(validBody), "}")

	_, err := ValidateDraft(input(t, body+`,"imageUrl":"not a url"}`))
	assert.Equal(t, []string{"imageUrl"}, violationFields(t, err))

	d, err := ValidateDraft(input(t, body+`,"imageUrl":"https://covers.openlibrary.org/b/id/1-L.jpg"}`))
	require.NoError(t, err)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/1-L.jpg", d.ImageURL)

	d, err = ValidateDraft(input(t, body+`,"imageUrl":""}`))
	require.NoError(t, err)
	assert.Empty(t, d.ImageURL)
}

func TestValidateDraft_IgnoresStatusAndImmutableFields(t *testing.T) {
	body := strings.TrimSuffix(strings.TrimSpace(validBody), "}")
	d, err := ValidateDraft(input(t, body+`,"status":"bogus","views":99,"sellerId":"x","id":"y"}`))
	require.NoError(t, err)
	assert.Empty(t, d.Status)
}

func TestValidatePatch(t *testing.T) {
	t.Run("only supplied fields", func(t *testing.T) {
		p, err := ValidatePatch(input(t, `{"price":"20","status":"reserved"}`))
		require.NoError(t, err)
		require.NotNil(t, p.Price)
		assert.Equal(t, 20.0, *p.Price)
		require.NotNil(t, p.Status)
		assert.Equal(t, StatusReserved, *p.Status)
		assert.Nil(t, p.Title)
		assert.Nil(t, p.Description)
		assert.Equal(t, []string{"price", "status"}, fieldNames(p.Fields()))
	})

	t.Run("empty patch", func(t *testing.T) {
		p, err := ValidatePatch(input(t, `{"views":10}`))
		require.NoError(t, err)
		assert.True(t, p.Empty())
	})

	t.Run("violations in field order", func(t *testing.T) {
		_, err := ValidatePatch(input(t, `{"status":"lost","description":"tiny","title":""}`))
		assert.Equal(t, []string{"title", "description", "status"}, violationFields(t, err))
	})

	t.Run("null required field", func(t *testing.T) {
		_, err := ValidatePatch(input(t, `{"price":null}`))
		assert.Equal(t, []string{"price"}, violationFields(t, err))
	})

	t.Run("blank image resets to default", func(t *testing.T) {
		p, err := ValidatePatch(input(t, `{"imageUrl":""}`))
		require.NoError(t, err)
		require.NotNil(t, p.ImageURL)
		assert.Equal(t, DefaultImageURL, *p.ImageURL)
	})

	t.Run("trims text", func(t *testing.T) {
		p, err := ValidatePatch(input(t, `{"author":"  Ursula K. Le Guin "}`))
		require.NoError(t, err)
		assert.Equal(t, "Ursula K. Le Guin", *p.Author)
	})
}

func TestValidateStatus(t *testing.T) {
	for _, s := range Statuses {
		st, err := ValidateStatus(string(s))
		assert.NoError(t, err)
		assert.Equal(t, s, st)
	}
	_, err := ValidateStatus("gone")
	assert.Equal(t, []string{"status"}, violationFields(t, err))
}

func TestDecodeInput_NotAnObject(t *testing.T) {
	for _, body := range []string{``, `[]`, `"text"`, `null`, `{bad json`} {
		_, err := DecodeInput(strings.NewReader(body))
		assert.Equal(t, []string{"body"}, violationFields(t, err), body)
	}
}

func TestPatchApply(t *testing.T) {
	l := Listing{Title: "Old", Price: 5, Status: StatusAvailable}
	title, price, status := "New", 7.5, StatusSold
	Patch{Title: &title, Price: &price, Status: &status}.Apply(&l)
	assert.Equal(t, Listing{Title: "New", Price: 7.5, Status: StatusSold}, l)
}

func fieldNames(fields []FieldValue) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func TestValidPrice(t *testing.T) {
	for _, p := range []float64{0.01, 0.1, 12.5, 19.99, 1234.56, 10000} {
		assert.True(t, ValidPrice(p), "%v", p)
	}
	for _, p := range []float64{0, 0.001, 0.004, 0.009, 12.345, 10000.001, -1} {
		assert.False(t, ValidPrice(p), "%v", p)
	}
}

func TestValidatePatch_SubCentPrice(t *testing.T) {
	_, err := ValidatePatch(input(t, `{"price":12.345}`))
	assert.Equal(t, []string{"price"}, violationFields(t, err))
}
