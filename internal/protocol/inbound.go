package protocol

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mind-engage/mindengage-matchgame/internal/match"
)

var ErrMalformedMessage = errors.New("malformed host message")

// Version identifies a revision of the host message layout.
type Version string

const (
	// V1 carries the pool under "otherQuestions".
	V1 Version = "v1"
	// V2 carries the pool under "questions".
	V2 Version = "v2"
)

//go:embed host_message.schema.json
var hostMessageSchema string

const schemaURL = "https://matchgame.local/schema/host_message.json"

var schema = jsonschema.MustCompileString(schemaURL, hostMessageSchema)

// Inbound is a host message after validation and normalization.
type Inbound struct {
	Version  Version
	Main     match.Question
	Others   []match.Question
	UserInfo map[string]any
}

type envelope struct {
	Version         Version             `json:"version"`
	CurrentQuestion *match.RawQuestion  `json:"currentQuestion"`
	OtherQuestions  []match.RawQuestion `json:"otherQuestions"`
	Questions       []match.RawQuestion `json:"questions"`
	UserInfo        map[string]any      `json:"userInfo"`
}

type decoder func(env envelope, present map[string]json.RawMessage) ([]match.RawQuestion, error)

var decoders = map[Version]decoder{
	V1: func(env envelope, present map[string]json.RawMessage) ([]match.RawQuestion, error) {
		if _, ok := present["otherQuestions"]; !ok {
			return nil, fmt.Errorf("%w: v1 message without otherQuestions", ErrMalformedMessage)
		}
		return env.OtherQuestions, nil
	},
	V2: func(env envelope, present map[string]json.RawMessage) ([]match.RawQuestion, error) {
		if _, ok := present["questions"]; !ok {
			return nil, fmt.Errorf("%w: v2 message without questions", ErrMalformedMessage)
		}
		return env.Questions, nil
	},
}

// Parse validates body against the host message schema, picks the revision
// decoder and returns the normalized questions. Every failure wraps
// ErrMalformedMessage.
func Parse(body []byte) (Inbound, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := schema.Validate(doc); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &present); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	v := detectVersion(env.Version, present)
	raw, err := decoders[v](env, present)
	if err != nil {
		return Inbound{}, err
	}

	return Inbound{
		Version:  v,
		Main:     match.NormalizeQuestion(*env.CurrentQuestion),
		Others:   match.NormalizeQuestions(raw),
		UserInfo: env.UserInfo,
	}, nil
}

// detectVersion honours an explicit tag, else infers from the list field.
// otherQuestions wins when both are present.
func detectVersion(tag Version, present map[string]json.RawMessage) Version {
	if _, ok := decoders[tag]; ok {
		return tag
	}
	if _, ok := present["otherQuestions"]; ok {
		return V1
	}
	return V2
}
