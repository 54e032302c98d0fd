package shared

const (
	ProjectID = "mosaic-project" // Overridden by GOOGLE_CLOUD_PROJECT

	TopicExercisesImported = "topic-exercises-imported"

	EventTypeExercisesImported = "com.mosaic.exercises.imported"
	EventSourceImporter        = "/mosaic/import-exercises"

	CollectionExercises  = "exercises"
	CollectionRoutines   = "routines"
	CollectionExecutions = "executions"

	SecretServiceRoleKey = "SUPABASE_SERVICE_ROLE_KEY"

	DefaultImportSource = "data/exercises.json"
)
