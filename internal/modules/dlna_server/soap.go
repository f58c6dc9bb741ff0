package dlnaserver

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/hearthcast/hearthcast/internal/contentdirectory"
)

const serviceType = "urn:schemas-upnp-org:service:ContentDirectory:1"

// parseSOAPAction extracts the action name from a SOAPACTION header value of
// the form "urn:...:ContentDirectory:1#Browse" (quotes optional).
func parseSOAPAction(header string) string {
	header = strings.Trim(strings.TrimSpace(header), `"`)
	if idx := strings.LastIndex(header, "#"); idx >= 0 {
		return header[idx+1:]
	}
	return ""
}

// parseEnvelope walks a SOAP request body and returns the action element
// name plus its child elements as a parameter map. Namespace prefixes are
// ignored; clients vary them freely.
func parseEnvelope(r io.Reader) (string, map[string]string, error) {
	dec := xml.NewDecoder(r)
	params := map[string]string{}
	var (
		inBody  bool
		action  string
		current string
		value   strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("parse envelope: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case strings.EqualFold(t.Name.Local, "Body"):
				inBody = true
			case inBody && action == "":
				action = t.Name.Local
			case inBody && current == "":
				current = t.Name.Local
				value.Reset()
			}
		case xml.CharData:
			if current != "" {
				value.Write(t)
			}
		case xml.EndElement:
			if current != "" && t.Name.Local == current {
				params[current] = value.String()
				current = ""
			}
		}
	}
	if action == "" {
		return "", nil, fmt.Errorf("no action element in envelope")
	}
	return action, params, nil
}

func buildResponseEnvelope(action string, resp contentdirectory.Response) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	buf.WriteString(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">`)
	buf.WriteString(`<s:Body><u:` + action + `Response xmlns:u="` + serviceType + `">`)
	for _, arg := range resp {
		buf.WriteString(`<` + arg.Name + `>` + xmlEscape(arg.Value) + `</` + arg.Name + `>`)
	}
	buf.WriteString(`</u:` + action + `Response></s:Body></s:Envelope>`)
	return buf.Bytes()
}

func buildFaultEnvelope(code int, description string) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	buf.WriteString(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">`)
	buf.WriteString(`<s:Body><s:Fault>`)
	buf.WriteString(`<faultcode>s:Client</faultcode>`)
	buf.WriteString(`<faultstring>UPnPError</faultstring>`)
	buf.WriteString(`<detail><UPnPError xmlns="urn:schemas-upnp-org:control-1-0">`)
	fmt.Fprintf(&buf, `<errorCode>%d</errorCode>`, code)
	buf.WriteString(`<errorDescription>` + xmlEscape(description) + `</errorDescription>`)
	buf.WriteString(`</UPnPError></detail>`)
	buf.WriteString(`</s:Fault></s:Body></s:Envelope>`)
	return buf.Bytes()
}

func xmlEscape(value string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(value))
	return buf.String()
}
