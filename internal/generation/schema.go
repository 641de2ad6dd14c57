package generation

import "github.com/google/jsonschema-go/jsonschema"

func personaFieldProperties() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		"name":        {Type: "string", Description: "The character's name."},
		"role":        {Type: "string", Description: "Role or occupation."},
		"tone":        {Type: "string", Description: "How the character speaks."},
		"personality": {Type: "string", Description: "Temperament and traits."},
		"worldview":   {Type: "string", Description: "Beliefs and values."},
		"experience":  {Type: "string", Description: "Background and history."},
		"other":       {Type: "string", Description: "Notable details that fit no other field."},
	}
}

// personaSchema covers every editable field plus the narrative summary; used
// for full extraction.
func personaSchema() *jsonschema.Schema {
	props := personaFieldProperties()
	props["summary"] = &jsonschema.Schema{
		Type:        "string",
		Description: "A natural-language portrait of the character.",
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   []string{"name", "role", "tone", "personality", "worldview", "experience", "other", "summary"},
	}
}

// personaPatchSchema omits the summary and requires nothing, so the model
// returns only the fields it actually derived.
func personaPatchSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: personaFieldProperties(),
	}
}

// creationChatSchema is one guided-interview turn: an utterance plus the
// fields changed this turn.
func creationChatSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"responseText": {
				Type:        "string",
				Description: "The interviewer's next utterance, ending in one clarifying question.",
			},
			"updatedParameters": {
				Type:        "object",
				Description: "Only the fields changed this turn.",
				Properties:  personaFieldProperties(),
			},
		},
		Required: []string{"responseText", "updatedParameters"},
	}
}
