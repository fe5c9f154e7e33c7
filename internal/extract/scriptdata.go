package extract

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"
)

// ScriptData is structured data recovered from inline scripts: JSON-LD
// blocks and window-global assignments. Listing sites frequently ship the
// fields we want in a data blob even when the rendered DOM hides them.
type ScriptData struct {
	Name      string
	Specialty string
	Contacts  []string
}

// Empty reports whether nothing useful was recovered.
func (d ScriptData) Empty() bool {
	return d.Name == "" && d.Specialty == "" && len(d.Contacts) == 0
}

const (
	maxScriptLen  = 64 * 1024
	scriptTimeout = 250 * time.Millisecond
	maxScanDepth  = 4
)

// FromScripts scans a document's inline scripts for embedded entity data.
// JSON-LD is parsed directly; plain scripts that assign window globals are
// executed in a sandboxed goja VM and the resulting window object is mined.
func FromScripts(doc *goquery.Document) ScriptData {
	var data ScriptData

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		mergeScriptData(&data, fromJSONLD(s.Text()))
		return data.Empty()
	})
	if !data.Empty() {
		return data
	}

	doc.Find("script:not([src])").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := s.Text()
		if len(src) == 0 || len(src) > maxScriptLen {
			return true
		}
		if !strings.Contains(src, "window.") {
			return true
		}
		mergeScriptData(&data, fromWindowGlobals(src))
		return data.Empty()
	})

	return data
}

func mergeScriptData(dst *ScriptData, src ScriptData) {
	if dst.Name == "" {
		dst.Name = src.Name
	}
	if dst.Specialty == "" {
		dst.Specialty = src.Specialty
	}
	dst.Contacts = dedupeStrings(append(dst.Contacts, src.Contacts...))
}

// fromJSONLD mines a JSON-LD block for Person/Physician-style fields.
func fromJSONLD(raw string) ScriptData {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return ScriptData{}
	}
	var data ScriptData
	scanValue(parsed, &data, 0)
	return data
}

// fromWindowGlobals executes an inline script against a stub window and
// mines whatever the script attached to it. The VM is interrupted after a
// short budget so a hostile or looping script cannot stall the crawl.
func fromWindowGlobals(src string) ScriptData {
	vm := goja.New()

	timer := time.AfterFunc(scriptTimeout, func() {
		vm.Interrupt("script budget exceeded")
	})
	defer timer.Stop()

	prelude := `var window = {}; var self = window; var document = {
  querySelector: function() { return null; },
  querySelectorAll: function() { return []; },
  addEventListener: function() {},
  getElementById: function() { return null; }
};`
	if _, err := vm.RunString(prelude); err != nil {
		return ScriptData{}
	}
	if _, err := vm.RunString(src); err != nil {
		// Most inline scripts reference browser APIs the stub lacks.
		log.Debug().Err(err).Msg("Inline script did not evaluate in sandbox")
		return ScriptData{}
	}

	exported, ok := vm.Get("window").Export().(map[string]any)
	if !ok {
		return ScriptData{}
	}

	var data ScriptData
	scanValue(exported, &data, 0)
	return data
}

// scanValue walks a decoded structure depth-first looking for the keys that
// carry entity fields. Depth is bounded; data blobs can be arbitrarily deep.
func scanValue(v any, data *ScriptData, depth int) {
	if depth > maxScanDepth {
		return
	}

	switch val := v.(type) {
	case map[string]any:
		for key, child := range val {
			lk := strings.ToLower(key)
			if s, ok := child.(string); ok {
				s = cleanText(s)
				if s == "" {
					continue
				}
				switch lk {
				case "name", "fullname", "doctorname", "practitionername":
					if data.Name == "" && ValidName(s) {
						data.Name = s
					}
				case "specialty", "speciality", "medicalspecialty", "department":
					if data.Specialty == "" {
						data.Specialty = s
					}
				case "telephone", "phone", "phonenumber", "tel", "email", "contactemail":
					data.Contacts = append(data.Contacts, s)
				}
				continue
			}
			scanValue(child, data, depth+1)
		}
	case []any:
		for _, child := range val {
			scanValue(child, data, depth+1)
		}
	}
}
