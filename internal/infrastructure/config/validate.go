package config

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/doeshing/termhelper/assets"
	"github.com/doeshing/termhelper/internal/domain"
)

// RequireAdvisor checks the settings the command advisor cannot run without.
// Scanning and updating need neither.
func RequireAdvisor(cfg domain.Config) error {
	if !cfg.HasAPIKey() {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no API key configured: set " + domain.EnvOpenRouterAPIKey + " or " + domain.EnvOpenAIAPIKey)
	}
	if cfg.LLM.Model == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no model configured: set " + domain.EnvOpenAIModel)
	}
	return nil
}

// WriteEnvTemplate writes the dotenv template to path. An existing file is
// only replaced when force is set.
func WriteEnvTemplate(path string, force bool) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(path + " already exists (use --force to overwrite)")
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodePermissionDenied).
				WithMsg("failed to create " + dir).
				WithCause(err)
		}
	}
	if err := os.WriteFile(path, assets.EnvTemplate, domain.SecureFilePermissions); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("failed to write " + path).
			WithCause(err)
	}
	return nil
}
