package repository

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Codec encodes a record set into a blob of a self-describing document format and back.
// Field names are the json names of the entity, for all codecs.
type Codec interface {
	Encode(records any) ([]byte, error)
	Decode(blob []byte, records any) error
	// Ext is the file extension used by file based stores.
	Ext() string
}

// CodecByName returns the codec registered for name: "json" or "yaml".
// An empty name returns JSONCodec.
func CodecByName(name string) (Codec, error) { //nolint:ireturn // selection by config
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	}

	return nil, fmt.Errorf("%w: codec: %s", ErrUnknownFormat, name)
}

var _ Codec = JSONCodec{}

// JSONCodec writes a record set as an indented JSON array.
type JSONCodec struct{}

func (JSONCodec) Encode(records any) ([]byte, error) {
	blob, err := json.MarshalIndent(records, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err) //nolint:errorlint // prevent err in api
	}

	return blob, nil
}

// Decode only accepts a JSON array, anything else is reported as ErrCorrupt.
func (JSONCodec) Decode(blob []byte, records any) error {
	if !gjson.ValidBytes(blob) {
		return fmt.Errorf("%w: invalid json", ErrCorrupt)
	}

	if !gjson.ParseBytes(blob).IsArray() {
		return fmt.Errorf("%w: json is not an array", ErrCorrupt)
	}

	if err := json.Unmarshal(blob, records); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err) //nolint:errorlint // prevent err in api
	}

	return nil
}

func (JSONCodec) Ext() string {
	return ".json"
}

var _ Codec = YAMLCodec{}

// YAMLCodec writes a record set as a YAML sequence.
// It goes through JSON on the way, so the entities only need json tags.
// The order of the records is kept, the order of fields within a record is not.
type YAMLCodec struct{}

func (YAMLCodec) Encode(records any) ([]byte, error) {
	asJSON, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err) //nolint:errorlint // prevent err in api
	}

	var doc any
	if err := json.Unmarshal(asJSON, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err) //nolint:errorlint // prevent err in api
	}

	blob, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err) //nolint:errorlint // prevent err in api
	}

	return blob, nil
}

func (YAMLCodec) Decode(blob []byte, records any) error {
	var doc any
	if err := yaml.Unmarshal(blob, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err) //nolint:errorlint // prevent err in api
	}

	if _, ok := doc.([]any); !ok {
		return fmt.Errorf("%w: yaml is not a sequence", ErrCorrupt)
	}

	asJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err) //nolint:errorlint // prevent err in api
	}

	if err := json.Unmarshal(asJSON, records); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err) //nolint:errorlint // prevent err in api
	}

	return nil
}

func (YAMLCodec) Ext() string {
	return ".yaml"
}
