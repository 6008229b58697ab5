package credentials

// Credentials represents the stored service credentials in credentials.toml.
type Credentials struct {
	Version  int                          `toml:"version"`
	Services map[string]ServiceCredential `toml:"services"`
}

// ServiceCredential points a Google service at a service account key file.
// Services without an entry use Application Default Credentials.
type ServiceCredential struct {
	CredentialsFile string `toml:"credentials_file"`
}
