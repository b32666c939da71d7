package config

// UploadConfig configures the local blob store.  Public objects are served
// under PublicPrefix; BaseURL is prepended when building absolute links.
type UploadConfig struct {
	Root          string `env:"UPLOAD_ROOT" envDefault:"uploads"`
	BaseURL       string `env:"UPLOAD_BASE_URL" envDefault:""`
	PublicPrefix  string `env:"UPLOAD_PUBLIC_PREFIX" envDefault:"/uploads"`
	ImageMaxBytes int64  `env:"UPLOAD_IMAGE_MAX_BYTES" envDefault:"2097152"`
	IDDocMaxBytes int64  `env:"UPLOAD_ID_DOCUMENT_MAX_BYTES" envDefault:"4194304"`
}
