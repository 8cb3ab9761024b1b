package constants

// Statement names
const (
	StmtGetSetting    = "get_setting"
	StmtUpsertSetting = "upsert_setting"
	StmtDeleteSetting = "delete_setting"
	StmtListSettings  = "list_settings"

	StmtInsertEvent = "insert_event"
	StmtListEvents  = "list_events"
)

var Queries = map[string]string{
	StmtGetSetting: `
		SELECT value
		FROM vault_settings
		WHERE owner = $1 AND key = $2`,

	StmtUpsertSetting: `
		INSERT INTO vault_settings (owner, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (owner, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,

	StmtDeleteSetting: `
		DELETE FROM vault_settings
		WHERE owner = $1 AND key = $2`,

	StmtListSettings: `
		SELECT key, value
		FROM vault_settings
		WHERE owner = $1
		ORDER BY key`,

	StmtInsertEvent: `
		INSERT INTO vault_events (id, event, payload, occurred_at)
		VALUES ($1::uuid, $2, $3, $4)`,

	StmtListEvents: `
		SELECT id, event, payload, occurred_at
		FROM vault_events
		WHERE event = $1
		ORDER BY occurred_at DESC
		LIMIT $2`,
}
