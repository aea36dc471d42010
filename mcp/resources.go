package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lvillar/rtldoc"
	"github.com/lvillar/rtldoc/doctpl"
	"github.com/lvillar/rtldoc/record"
)

const templateScheme = "template://"

// RegisterDefaultResources adds the document templates of eng as resources.
// Templates are served as YAML and can be edited and loaded back with
// doctpl.Load.
func RegisterDefaultResources(s *Server, eng *rtldoc.Engine) {
	tpl := func(uri string) ([]ResourceContent, error) {
		return templateResource(eng, uri)
	}
	s.AddResource(Resource{
		URI:         templateScheme + string(record.KindContract),
		Name:        "Contract template",
		Description: "Articles, signers and footer of the contract document as YAML.",
		MIMEType:    "application/yaml",
		Handler:     tpl,
	})
	s.AddResource(Resource{
		URI:         templateScheme + string(record.KindEstimate),
		Name:        "Estimate template",
		Description: "Articles, signers and footer of the estimate document as YAML.",
		MIMEType:    "application/yaml",
		Handler:     tpl,
	})
	s.AddResource(Resource{
		URI:         templateScheme + "generators",
		Name:        "Template generators",
		Description: "Names of the content generators and signer resolvers templates may refer to.",
		MIMEType:    "application/json",
		Handler:     handleGeneratorsResource,
	})
}

func templateResource(eng *rtldoc.Engine, uri string) ([]ResourceContent, error) {
	kind, err := record.ParseKind(strings.TrimPrefix(uri, templateScheme))
	if err != nil {
		return nil, err
	}
	cfg, err := eng.Template(kind)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := doctpl.Encode(&buf, cfg); err != nil {
		return nil, fmt.Errorf("encoding template: %w", err)
	}
	return []ResourceContent{{
		URI:      uri,
		MIMEType: "application/yaml",
		Text:     buf.String(),
	}}, nil
}

func handleGeneratorsResource(uri string) ([]ResourceContent, error) {
	data, err := json.MarshalIndent(map[string][]string{
		"generators": doctpl.GeneratorNames(),
		"resolvers":  doctpl.ResolverNames(),
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return []ResourceContent{{
		URI:      uri,
		MIMEType: "application/json",
		Text:     string(data),
	}}, nil
}
