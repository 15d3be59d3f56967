package listing

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violation is a single field-level constraint failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated field of a request.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// fieldOrder is the order violations are reported in.
var fieldOrder = []string{"title", "author", "genre", "condition", "price", "description", "imageUrl", "status"}

var fieldMessages = map[string]string{
	"title":       "Title must be between 1 and 200 characters",
	"author":      "Author must be between 1 and 100 characters",
	"genre":       "Invalid genre",
	"condition":   "Invalid condition",
	"price":       "Price must be between 0.01 and 10000 with at most two decimal places",
	"description": "Description must be between 20 and 1000 characters",
	"imageUrl":    "Image URL must be valid",
	"status":      "Invalid status",
}

// Draft holds the candidate values of a listing. On create every field is
// checked; on update only the supplied ones.
type Draft struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Author      string    `json:"author" validate:"required,max=100"`
	Genre       string    `json:"genre" validate:"required,genre"`
	Condition   Condition `json:"condition" validate:"required,condition"`
	Price       *float64  `json:"price" validate:"required,price"`
	Description string    `json:"description" validate:"required,min=20,max=1000"`
	ImageURL    string    `json:"imageUrl" validate:"omitempty,url"`
	Status      Status    `json:"status" validate:"omitempty,listing_status"`
}

// goFields maps wire names to Draft field names for partial validation.
var goFields = map[string]string{
	"title":       "Title",
	"author":      "Author",
	"genre":       "Genre",
	"condition":   "Condition",
	"price":       "Price",
	"description": "Description",
	"imageUrl":    "ImageURL",
	"status":      "Status",
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Title       *string
	Author      *string
	Genre       *string
	Condition   *Condition
	Price       *float64
	Description *string
	ImageURL    *string
	Status      *Status
}

// FieldValue is one supplied field of a Patch, keyed by its wire name.
type FieldValue struct {
	Name  string
	Value any
}

// Fields returns the supplied fields in a stable order.
func (p Patch) Fields() []FieldValue {
	var out []FieldValue
	if p.Title != nil {
		out = append(out, FieldValue{"title", *p.Title})
	}
	if p.Author != nil {
		out = append(out, FieldValue{"author", *p.Author})
	}
	if p.Genre != nil {
		out = append(out, FieldValue{"genre", *p.Genre})
	}
	if p.Condition != nil {
		out = append(out, FieldValue{"condition", string(*p.Condition)})
	}
	if p.Price != nil {
		out = append(out, FieldValue{"price", *p.Price})
	}
	if p.Description != nil {
		out = append(out, FieldValue{"description", *p.Description})
	}
	if p.ImageURL != nil {
		out = append(out, FieldValue{"imageUrl", *p.ImageURL})
	}
	if p.Status != nil {
		out = append(out, FieldValue{"status", string(*p.Status)})
	}
	return out
}

func (p Patch) Empty() bool { return len(p.Fields()) == 0 }

// Apply copies the supplied fields onto l.
func (p Patch) Apply(l *Listing) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Author != nil {
		l.Author = *p.Author
	}
	if p.Genre != nil {
		l.Genre = *p.Genre
	}
	if p.Condition != nil {
		l.Condition = *p.Condition
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.ImageURL != nil {
		l.ImageURL = *p.ImageURL
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return IsGenre(fl.Field().String())
	})
	_ = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		return Condition(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		return ValidPrice(fl.Field().Float())
	})
	_ = v.RegisterValidation("listing_status", func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).Valid()
	})
	return v
}

// Price bounds. Amounts are whole cents so every backend stores the value
// it was given.
const (
	MinPrice = 0.01
	MaxPrice = 10000
)

// ValidPrice reports whether p lies in [MinPrice, MaxPrice] with at most two
// decimal places.
func ValidPrice(p float64) bool {
	if p < MinPrice || p > MaxPrice {
		return false
	}
	cents := p * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}

// Input is a request body split into raw top-level fields so that a field of
// the wrong JSON type is reported as a violation of that field.
type Input map[string]json.RawMessage

// DecodeInput reads a JSON object from r.
func DecodeInput(r io.Reader) (Input, error) {
	var in Input
	if err := json.NewDecoder(r).Decode(&in); err != nil || in == nil {
		return nil, &ValidationError{Violations: []Violation{{Field: "body", Message: "Request body must be a JSON object"}}}
	}
	return in, nil
}

// ValidateDraft checks a creation request and returns the normalised draft.
func ValidateDraft(in Input) (Draft, error) {
	d, _, bad := in.decode(false)
	var violations []Violation
	for field, msg := range bad {
		violations = append(violations, Violation{Field: field, Message: msg})
	}
	except := []string{"Status"}
	for field := range bad {
		except = append(except, goFields[field])
	}
	violations = append(violations, structViolations(validate.StructExcept(d, except...))...)
	if len(violations) > 0 {
		return Draft{}, newValidationError(violations)
	}
	return d, nil
}

// ValidatePatch checks an update request. Only supplied fields are checked
// and only they end up in the returned Patch.
func ValidatePatch(in Input) (Patch, error) {
	d, supplied, bad := in.decode(true)
	var violations []Violation
	for field, msg := range bad {
		violations = append(violations, Violation{Field: field, Message: msg})
	}
	var partial []string
	for _, field := range supplied {
		if _, ok := bad[field]; !ok {
			partial = append(partial, goFields[field])
		}
	}
	if len(partial) > 0 {
		violations = append(violations, structViolations(validate.StructPartial(d, partial...))...)
	}
	if len(violations) > 0 {
		return Patch{}, newValidationError(violations)
	}

	var p Patch
	for _, field := range supplied {
		switch field {
		case "title":
			p.Title = &d.Title
		case "author":
			p.Author = &d.Author
		case "genre":
			p.Genre = &d.Genre
		case "condition":
			p.Condition = &d.Condition
		case "price":
			p.Price = d.Price
		case "description":
			p.Description = &d.Description
		case "imageUrl":
			url := d.ImageURL
			if url == "" {
				url = DefaultImageURL
			}
			p.ImageURL = &url
		case "status":
			p.Status = &d.Status
		}
	}
	return p, nil
}

// ValidateStatus checks a bare status transition request.
func ValidateStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if !st.Valid() {
		return "", newValidationError([]Violation{{Field: "status", Message: fieldMessages["status"]}})
	}
	return st, nil
}

// decode extracts the known fields from the input. It returns the draft, the
// wire names of the supplied fields in report order, and type errors by field.
func (in Input) decode(withStatus bool) (Draft, []string, map[string]string) {
	var d Draft
	var supplied []string
	bad := map[string]string{}

	str := func(field string, dst *string) {
		raw, ok := in[field]
		if !ok {
			return
		}
		supplied = append(supplied, field)
		if isNull(raw) {
			*dst = ""
			return
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			bad[field] = typeMessage(field, "string")
			return
		}
		*dst = strings.TrimSpace(*dst)
	}

	str("title", &d.Title)
	str("author", &d.Author)
	str("genre", &d.Genre)
	var condition, status string
	str("condition", &condition)
	d.Condition = Condition(condition)
	if raw, ok := in["price"]; ok {
		supplied = append(supplied, "price")
		if !isNull(raw) {
			price, err := parsePrice(raw)
			if err != nil {
				bad["price"] = typeMessage("price", "number")
			} else {
				d.Price = &price
			}
		}
	}
	str("description", &d.Description)
	str("imageUrl", &d.ImageURL)
	if withStatus {
		str("status", &status)
		d.Status = Status(status)
	}

	sort.SliceStable(supplied, func(i, j int) bool { return fieldIndex(supplied[i]) < fieldIndex(supplied[j]) })
	return d, supplied, bad
}

func parsePrice(raw json.RawMessage) (float64, error) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("price %q is not finite", s)
	}
	return n, nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func typeMessage(field, kind string) string {
	return fmt.Sprintf("%s must be a %s", field, kind)
}

func structViolations(err error) []Violation {
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Violation{{Field: "body", Message: "Invalid input"}}
	}
	out := make([]Violation, 0, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		msg, ok := fieldMessages[field]
		if !ok {
			msg = field + " is invalid"
		}
		out = append(out, Violation{Field: field, Message: msg})
	}
	return out
}

func newValidationError(violations []Violation) *ValidationError {
	sort.SliceStable(violations, func(i, j int) bool {
		return fieldIndex(violations[i].Field) < fieldIndex(violations[j].Field)
	})
	return &ValidationError{Violations: violations}
}

func fieldIndex(field string) int {
	for i, f := range fieldOrder {
		if f == field {
			return i
		}
	}
	return len(fieldOrder)
}
