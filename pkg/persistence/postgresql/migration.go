package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				version_id VARCHAR(128) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				form_path VARCHAR(255) NOT NULL,
				download_name VARCHAR(512) NOT NULL,
				result JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_created_at ON workflows(created_at);
		`,
		2: `
			CREATE TABLE activities (
				id VARCHAR(128) PRIMARY KEY,
				type VARCHAR(64) NOT NULL,
				event_key VARCHAR(255) NOT NULL DEFAULT '',
				summary TEXT NOT NULL DEFAULT '',
				payload JSONB,
				occurred_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_activities_occurred_at ON activities(occurred_at DESC);
			CREATE INDEX idx_activities_type ON activities(type);
		`,
	}
}
