package config

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

// NewExportForTest creates an export config for testing purposes
func NewExportForTest(backend, dir, dbPath string) *Export {
	return &Export{
		backend: backend,
		dir:     dir,
		dbPath:  dbPath,
	}
}

// NewLoggerForTest creates a logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewCollaboratorsForTest creates a collaborator config for testing purposes
func NewCollaboratorsForTest(wikiLanguage string, disableWiki, disableLauncher bool) *Collaborators {
	return &Collaborators{
		wikiLanguage:    wikiLanguage,
		disableWiki:     disableWiki,
		disableLauncher: disableLauncher,
	}
}

// NewPersonaForTest creates a persona config for testing purposes
func NewPersonaForTest(path string) *Persona {
	return &Persona{path: path}
}
