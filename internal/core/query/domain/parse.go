package domain

import (
	"sort"

	schemadomain "github.com/chorm-dev/chorm/internal/core/schema/domain"
)

// ParseTree converts a loose map-form condition document into the tagged
// condition tree. The combinator keys "and"/"or"/"not" and their
// MongoDB-style aliases "$and"/"$or"/"$not" are fully interchangeable
// and may be mixed at any depth.
//
// A plain map value is classified as an operator set only when every key
// is in the operator vocabulary; a map mixing operator and non-operator
// keys is rejected, which reserves the operator names as field-map keys
// rather than guessing.
func ParseTree(doc map[string]interface{}) (Condition, error) {
	if len(doc) == 0 {
		return Fields{}, nil
	}

	// Keys iterate sorted so documents mixing several combinators parse
	// to the same child order every time.
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fields := Fields{}
	var combined And
	for _, key := range keys {
		value := doc[key]
		switch key {
		case "and", "$and":
			children, err := parseChildren(key, value)
			if err != nil {
				return nil, err
			}
			combined = append(combined, And(children))
		case "or", "$or":
			children, err := parseChildren(key, value)
			if err != nil {
				return nil, err
			}
			combined = append(combined, Or(children))
		case "not", "$not":
			child, err := parseChild(key, value)
			if err != nil {
				return nil, err
			}
			combined = append(combined, Not{Cond: child})
		default:
			fv, err := parseFieldValue(key, value)
			if err != nil {
				return nil, err
			}
			fields[key] = fv
		}
	}

	if len(combined) == 0 {
		return fields, nil
	}
	if len(fields) > 0 {
		combined = append(combined, fields)
	}
	if len(combined) == 1 {
		return combined[0], nil
	}
	return combined, nil
}

func parseChildren(key string, value interface{}) ([]Condition, error) {
	docs, ok := value.([]map[string]interface{})
	if !ok {
		loose, looseOK := value.([]interface{})
		if !looseOK {
			return nil, schemadomain.NewValidationError(key, "combinator requires a list of conditions, got %T", value)
		}
		docs = make([]map[string]interface{}, 0, len(loose))
		for _, item := range loose {
			doc, docOK := item.(map[string]interface{})
			if !docOK {
				return nil, schemadomain.NewValidationError(key, "combinator child must be a condition map, got %T", item)
			}
			docs = append(docs, doc)
		}
	}
	children := make([]Condition, 0, len(docs))
	for _, doc := range docs {
		child, err := ParseTree(doc)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func parseChild(key string, value interface{}) (Condition, error) {
	doc, ok := value.(map[string]interface{})
	if !ok {
		return nil, schemadomain.NewValidationError(key, "not requires a condition map, got %T", value)
	}
	return ParseTree(doc)
}

func parseFieldValue(field string, value interface{}) (FieldValue, error) {
	switch v := value.(type) {
	case Raw:
		return v, nil
	case *Raw:
		return *v, nil
	case OperatorSet:
		return v, nil
	case Literal:
		return v, nil
	case map[string]interface{}:
		set := make(OperatorSet, len(v))
		for key, opValue := range v {
			if !IsOperator(key) {
				return nil, schemadomain.NewValidationError(field, "unknown operator %q", key)
			}
			set[Operator(key)] = opValue
		}
		return set, nil
	default:
		return Literal{Value: value}, nil
	}
}
