package validation

import (
	"math"
	"strconv"
	"strings"

	"product-api/internal/apperror"
	"product-api/internal/model"
)

// Mode selects which rule set applies. Required-field rules only run
// on create.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

func (m Mode) String() string {
	if m == ModeCreate {
		return "create"
	}
	return "update"
}

// Product checks a raw decoded JSON object and returns the normalized
// input. All rules run; failures accumulate into one Validation error.
func Product(raw map[string]any, mode Mode) (model.ProductInput, error) {
	var errs []string

	name, hasName := raw["name"]
	description, hasDescription := raw["description"]
	price, hasPrice := raw["price"]
	category, hasCategory := raw["category"]
	inStock, hasInStock := raw["inStock"]

	nameSet := truthy(name, hasName)
	descriptionSet := truthy(description, hasDescription)
	priceSet := truthy(price, hasPrice)
	categorySet := truthy(category, hasCategory)

	if mode == ModeCreate {
		if !nameSet {
			errs = append(errs, "Name is required")
		}
		if !descriptionSet {
			errs = append(errs, "Description is required")
		}
		if !priceSet {
			errs = append(errs, "Price is required")
		}
		if !categorySet {
			errs = append(errs, "Category is required")
		}
	}

	if nameSet && !isString(name) {
		errs = append(errs, "Name must be a string")
	}
	if descriptionSet && !isString(description) {
		errs = append(errs, "Description must be a string")
	}
	priceValue, priceNumeric := toNumber(price)
	if priceSet && !priceNumeric {
		errs = append(errs, "Price must be a number")
	}
	if categorySet && !isString(category) {
		errs = append(errs, "Category must be a string")
	}

	var stock *bool
	if hasInStock {
		if b, ok := toBool(inStock); ok {
			stock = &b
		} else {
			errs = append(errs, "inStock must be a boolean (true/false)")
		}
	}

	if priceSet && priceNumeric && priceValue < 0 {
		errs = append(errs, "Price cannot be negative")
	}

	if len(errs) > 0 {
		return model.ProductInput{}, apperror.Validation(errs)
	}

	in := model.ProductInput{InStock: stock}
	if nameSet {
		in.Name = stringPtr(name)
	}
	if descriptionSet {
		in.Description = stringPtr(description)
	}
	if categorySet {
		in.Category = stringPtr(category)
	}
	if priceSet {
		in.Price = &priceValue
	}
	return in, nil
}

// truthy mirrors loose truthiness: absent, null, false, 0 and "" are unset.
func truthy(v any, present bool) bool {
	if !present {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func stringPtr(v any) *string {
	s := v.(string)
	return &s
}

// toNumber accepts JSON numbers and numeric strings. Blank strings count
// as zero. Infinite and NaN values are rejected.
func toNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, true
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch t {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}
