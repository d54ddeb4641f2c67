package lactoserv

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// RawConfig is the intermediate, untyped form a config file is parsed
// into before mapstructure decodes it into typed records: endpoint,
// application, service and host configuration.
type RawConfig map[string]any

// LoadConfigFile reads path and parses it as TOML, YAML or JSON, chosen
// by file extension (".toml", ".yaml"/".yml", ".json").
func LoadConfigFile(path string) (RawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading config file %s: %v", ErrConfiguration, path, err)
	}

	raw := RawConfig{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("%w: parsing TOML config %s: %v", ErrConfiguration, path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: parsing YAML config %s: %v", ErrConfiguration, path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: parsing JSON config %s: %v", ErrConfiguration, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: config file %s has unrecognized extension", ErrConfiguration, path)
	}

	return raw, nil
}

// decode maps a RawConfig section into a typed struct via mapstructure,
// using the "mapstructure" tag the way every endpoint/application/
// service/host record below is tagged.
func decode(section any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
	})
	if err != nil {
		return fmt.Errorf("%w: building config decoder: %v", ErrConfiguration, err)
	}
	if err := dec.Decode(section); err != nil {
		return fmt.Errorf("%w: decoding config section: %v", ErrConfiguration, err)
	}
	return nil
}

// ClassedRecord is the common shape of an application/service/host record
// identified by a "class" type tag plus a "name", with the remaining
// fields class-specific.
type ClassedRecord struct {
	Class  string         `mapstructure:"class"`
	Name   string         `mapstructure:"name"`
	Fields map[string]any `mapstructure:",remain"`
}

// ApplicationConstructor builds an Application from a ClassedRecord's
// Fields, given an already-built ApplicationManager for composites (e.g.
// HostRouter) that reference other applications by name.
type ApplicationConstructor func(record ClassedRecord, apps *ApplicationManager) (Application, error)

// ClassRegistry is a small constructor registry keyed by Class
// (the "class tag"), in place of a dynamic-type-check / mixin dispatch.
type ClassRegistry struct {
	constructors map[string]ApplicationConstructor
}

// NewClassRegistry returns an empty registry.
func NewClassRegistry() *ClassRegistry {
	return &ClassRegistry{constructors: map[string]ApplicationConstructor{}}
}

// Register associates class with constructor. Re-registering a class
// replaces its constructor.
func (r *ClassRegistry) Register(class string, constructor ApplicationConstructor) {
	r.constructors[class] = constructor
}

// Build constructs the application named by record.Name per its Class.
func (r *ClassRegistry) Build(record ClassedRecord, apps *ApplicationManager) (Application, error) {
	ctor, ok := r.constructors[record.Class]
	if !ok {
		return nil, fmt.Errorf("%w: unknown application class %q", ErrConfiguration, record.Class)
	}
	return ctor(record, apps)
}
