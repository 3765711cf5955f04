package gql

import (
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/oksasatya/go-blog-graph/internal/application"
	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
)

func serializeDate(value interface{}) interface{} {
	switch v := value.(type) {
	case time.Time:
		return v.Format(time.DateOnly)
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.Format(time.DateOnly)
	default:
		return nil
	}
}

func parseDate(value interface{}) interface{} {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	return t
}

// Date is a calendar day in YYYY-MM-DD form.
var Date = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Date",
	Description: "A calendar date, YYYY-MM-DD.",
	Serialize:   serializeDate,
	ParseValue:  parseDate,
	ParseLiteral: func(valueAST ast.Value) interface{} {
		if v, ok := valueAST.(*ast.StringValue); ok {
			return parseDate(v.Value)
		}
		return nil
	},
})

// Upload accepts a file part of a multipart request. It has no literal form;
// the handler substitutes files into variables before execution.
var Upload = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Upload",
	Description: "A file sent as a part of a multipart request.",
	Serialize: func(value interface{}) interface{} {
		return nil
	},
	ParseValue: func(value interface{}) interface{} {
		if f, ok := value.(*application.FileUpload); ok {
			return f
		}
		return nil
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		return nil
	},
})

var PublishStatusEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "PublishStatus",
	Values: graphql.EnumValueConfigMap{
		"DRAFT":   &graphql.EnumValueConfig{Value: entity.StatusDraft},
		"PUBLISH": &graphql.EnumValueConfig{Value: entity.StatusPublish},
	},
})
