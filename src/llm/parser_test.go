package llm

import (
	"strings"
	"testing"

	"plan_advisor/src/model"

	"github.com/stretchr/testify/assert"
)

func TestParseEntities(t *testing.T) {
	p := NewTupleParser()

	content := `(entity<||>Ohio<||>LOC<||>0.98)
##
(entity<||>missing confidence<||>MISC)
##
(intent<||>greet<||>0.9<||>1)
##
(entity<||>Blue Shield<||>ORG<||>high)
##
(entity<||> Acme Corp <||> ORG <||> 0.91 )
<|COMPLETE|>`

	assert.Equal(t, []model.ExtractedEntity{
		{Text: "Ohio", Label: "LOC", Confidence: 0.98},
		{Text: "Acme Corp", Label: "ORG", Confidence: 0.91},
	}, p.ParseEntities(content))
}

func TestParseEntitiesEmpty(t *testing.T) {
	p := NewTupleParser()
	assert.Empty(t, p.ParseEntities(""))
	assert.Empty(t, p.ParseEntities("<|COMPLETE|>"))

	long := "(entity<||>" + strings.Repeat("a", MaxEntityTextLength+1) + "<||>MISC<||>0.99)"
	assert.Empty(t, p.ParseEntities(long))
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", `Here you go: {"a":{"b":2}} hope that helps`, `{"a":{"b":2}}`},
		{"brace in string", `{"a":"}{"} trailing`, `{"a":"}{"}`},
		{"no object", "nothing here", "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.in))
		})
	}
}
