package services

import (
	"github.com/GregMSThompson/pitch-backend/internal/deck"
	"github.com/GregMSThompson/pitch-backend/internal/dto"
)

func str() *dto.VertexSchema { return &dto.VertexSchema{Type: "string"} }
func num() *dto.VertexSchema { return &dto.VertexSchema{Type: "number"} }

// optional marks item-level fields the generator may leave null.
func optional(s *dto.VertexSchema) *dto.VertexSchema {
	s.Nullable = true
	return s
}

func arrayOf(items *dto.VertexSchema) *dto.VertexSchema {
	return &dto.VertexSchema{Type: "array", Items: items}
}

func object(props map[string]*dto.VertexSchema, required ...string) *dto.VertexSchema {
	return &dto.VertexSchema{Type: "object", Properties: props, Required: required}
}

// deckResponseSchema constrains generation output to the deck wire format.
// The layout and trend enums come from package deck.
func deckResponseSchema() *dto.VertexSchema {
	layouts := deck.Layouts()
	layoutEnum := make([]string, len(layouts))
	for i, l := range layouts {
		layoutEnum[i] = string(l)
	}
	trends := deck.Trends()
	trendEnum := make([]string, len(trends))
	for i, t := range trends {
		trendEnum[i] = string(t)
	}

	content := object(map[string]*dto.VertexSchema{
		string(deck.FieldTitle):       str(),
		string(deck.FieldSubtitle):    str(),
		string(deck.FieldKeyTakeaway): str(),
		string(deck.FieldBody):        str(),
		string(deck.FieldPoints):      arrayOf(str()),
		string(deck.FieldMetrics): arrayOf(object(map[string]*dto.VertexSchema{
			"label": str(),
			"value": str(),
			"unit":  optional(str()),
			"trend": optional(&dto.VertexSchema{Type: "string", Enum: trendEnum}),
		}, "label", "value")),
		string(deck.FieldTableData): object(map[string]*dto.VertexSchema{
			"headers": arrayOf(str()),
			"rows":    arrayOf(arrayOf(str())),
		}),
		string(deck.FieldTimelineEvents): arrayOf(object(map[string]*dto.VertexSchema{
			"date":        str(),
			"event":       str(),
			"description": optional(str()),
		})),
		string(deck.FieldGanttData): arrayOf(object(map[string]*dto.VertexSchema{
			"task":      str(),
			"startWeek": num(),
			"duration":  num(),
			"category":  str(),
		})),
		string(deck.FieldChartData): arrayOf(object(map[string]*dto.VertexSchema{
			"label": str(),
			"value": num(),
			"color": optional(str()),
		})),
		string(deck.FieldBankTargets): arrayOf(object(map[string]*dto.VertexSchema{
			"name": str(),
			"tier": str(),
			"role": str(),
		})),
	})

	slide := object(map[string]*dto.VertexSchema{
		"id":      str(),
		"layout":  {Type: "string", Enum: layoutEnum},
		"content": content,
	}, "id", "layout", "content")

	return object(map[string]*dto.VertexSchema{
		"projectName": str(),
		"slides":      arrayOf(slide),
	}, "projectName", "slides")
}
