package config

import (
	"crypto/tls"
	_ "embed"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/josephlewis42/ublush/core/ttylog"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	AppLogName        = "app.log"
)

// Session transports.
const (
	TransportTCP = "tcp"
	TransportTLS = "tls"
	TransportSSH = "ssh"
)

// Session scope policies.
const (
	ScopeStandalone = "standalone"
	ScopeChained    = "chained"
	ScopeShared     = "shared"
)

type Configuration struct {
	configFs afero.Fs

	Port              int    `json:"port" validate:"gte=0,lte=65535"`
	Address           string `json:"address"`
	Transport         string `json:"transport" validate:"oneof=tcp tls ssh"`
	AcceptTimeoutMS   int    `json:"accept_timeout_ms" validate:"gte=1"`
	OptionIntroducers string `json:"option_introducers" validate:"required"`

	TLS TLS `json:"tls"`
	SSH SSH `json:"ssh"`

	SessionScope      string `json:"session_scope" validate:"oneof=standalone chained shared"`
	SynchronizedScope bool   `json:"synchronized_scope"`
	SandboxSessions   bool   `json:"sandbox_sessions"`

	Dbug Dbug `json:"dbug"`

	HistoryFile string   `json:"history_file"`
	IncludePath []string `json:"include_path" validate:"dive,required"`
	EchoInclude bool     `json:"echo_include"`
	Prompt      string   `json:"prompt"`

	OutputRateBytesPerSec int64  `json:"output_rate_bytes_per_sec" validate:"gte=0"`
	EventLog              string `json:"event_log"`
	RecordingsDir         string `json:"recordings_dir"`
}

type TLS struct {
	CertFile string `json:"cert_file" validate:"required_with=KeyFile"`
	KeyFile  string `json:"key_file" validate:"required_with=CertFile"`
}

type SSH struct {
	HostKeyFile string   `json:"host_key_file"`
	Passwords   []string `json:"passwords" validate:"unique"`
}

type Dbug struct {
	ShareHostScope bool `json:"share_host_scope"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Transport == TransportTLS && c.TLS.CertFile == "" {
		return errors.New("transport tls requires tls.cert_file and tls.key_file")
	}
	return nil
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		return afero.NewOsFs()
	}
	return c.configFs
}

// Fs is the filesystem rooted at the configuration directory.
func (c *Configuration) Fs() afero.Fs {
	return c.fs()
}

// AcceptTimeout is the listener's bounded accept wait.
func (c *Configuration) AcceptTimeout() time.Duration {
	return time.Duration(c.AcceptTimeoutMS) * time.Millisecond
}

// TLSConfig loads the configured certificate pair.
func (c *Configuration) TLSConfig() (*tls.Config, error) {
	certPem, err := afero.ReadFile(c.fs(), c.TLS.CertFile)
	if err != nil {
		return nil, err
	}
	keyPem, err := afero.ReadFile(c.fs(), c.TLS.KeyFile)
	if err != nil {
		return nil, err
	}
	cert, err := tls.X509KeyPair(certPem, keyPem)
	if err != nil {
		return nil, err
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}}, nil
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// OpenEventLog opens the session event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	return c.fs().OpenFile(c.EventLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the session event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	return c.fs().OpenFile(c.EventLog, os.O_RDONLY, 0600)
}

// OpenRecording creates the transcript file for a session.
func (c *Configuration) OpenRecording(sessionID string) (io.WriteCloser, error) {
	if err := c.fs().MkdirAll(c.RecordingsDir, 0700); err != nil {
		return nil, err
	}
	name := filepath.Join(c.RecordingsDir, sessionID+"."+ttylog.AsciicastFileExt)
	return c.fs().OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
}

// ListRecordings returns the recorded session transcripts, oldest first.
func (c *Configuration) ListRecordings() ([]string, error) {
	infos, err := afero.ReadDir(c.fs(), c.RecordingsDir)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].ModTime().Before(infos[j].ModTime())
	})

	var out []string
	for _, info := range infos {
		if !info.IsDir() && filepath.Ext(info.Name()) == "."+ttylog.AsciicastFileExt {
			out = append(out, filepath.Join(c.RecordingsDir, info.Name()))
		}
	}
	return out, nil
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Default returns the built-in configuration rooted at the working
// directory.
func Default() *Configuration {
	return defaultConfig()
}
