package batch

// DefaultRecipeID is used when a QMIB template payload carries no id.
const DefaultRecipeID = "unknown-recipe"

// RecordFromTemplate builds a new planned Record from a QMIB template
// payload. The mapping is total: missing or malformed keys default instead
// of erroring.
//
// Template shape (all keys optional):
//
//	{"id": "R7", "defaultData": {"temp": 72}, "equipment": ["E1", "E2"]}
func RecordFromTemplate(template map[string]any, batchID string) Record {
	recipeID := DefaultRecipeID
	if id, ok := template["id"].(string); ok && id != "" {
		recipeID = id
	}

	data := Data{}
	if raw, ok := template["defaultData"].(map[string]any); ok {
		for key, entry := range raw {
			if value, ok := FromAny(entry); ok {
				data[key] = value
			}
			// non-scalar entries are dropped, not errored
		}
	}

	equipment := []string{}
	if raw, ok := template["equipment"].([]any); ok {
		for _, entry := range raw {
			if id, ok := entry.(string); ok {
				equipment = append(equipment, id)
			}
		}
	}

	return Record{
		BatchID:   batchID,
		RecipeID:  recipeID,
		Status:    StatusPlanned,
		Data:      data,
		Equipment: equipment,
	}
}
