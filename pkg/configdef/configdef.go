package configdef

import (
	"fmt"
	"strings"

	"github.com/tauraamui/xerror"
	"gopkg.in/dealancer/validate.v2"
)

type Detector struct {
	Type        string `json:"type" validate:"one_of=cascade,pigo,center"`
	CascadePath string `json:"cascade_path"`
	MinSize     int    `json:"min_size" validate:"gte=0 & lte=4096"`
}

type Pair struct {
	Extractor string `json:"extractor" validate:"one_of=cheeks_only,face_without_eyes,cheeks_and_nose"`
	Strategy  string `json:"strategy" validate:"one_of=green,chrom"`
}

type Dataset struct {
	Enabled bool   `json:"enabled"`
	Split   string `json:"split"`
	Label   int    `json:"label" validate:"gte=0 & lte=1"`
}

type MQTT struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	Topic    string `json:"topic"`
	ClientID string `json:"client_id"`
	QoS      int    `json:"qos" validate:"gte=0 & lte=2"`
}

type Values struct {
	Debug         bool     `json:"debug"`
	VideoBackend  string   `json:"video_backend" validate:"one_of=opencv,mock"`
	Source        string   `json:"source"`
	Detector      Detector `json:"detector"`
	TimeLimit     int      `json:"time_limit" validate:"gte=1 & lte=3600"`
	SkipCount     int      `json:"skip_count" validate:"gte=0 & lte=300"`
	Budget        string   `json:"budget" validate:"one_of=elapsed,processed"`
	WindowSeconds float64  `json:"window_seconds"`
	LiveInterval  int      `json:"live_interval" validate:"gte=0"`
	Display       bool     `json:"display"`
	Plot          bool     `json:"plot"`
	RecordROI     bool     `json:"record_roi"`
	OutputDir     string   `json:"output_dir"`
	RetainDays    int      `json:"retain_days" validate:"gte=0 & lte=3650"`
	QuitKey       string   `json:"quit_key"`
	Pairs         []Pair   `json:"pairs"`
	Dataset       Dataset  `json:"dataset"`
	MQTT          MQTT     `json:"mqtt"`
}

var splits = []string{"train", "devel", "test"}

// RunValidate checks the struct tags and then the rules spanning fields.
func (v Values) RunValidate() error {
	if err := validate.Validate(&v); err != nil {
		return err
	}
	return v.Validate()
}

func (v Values) Validate() error {
	const validationErrorHeader = "validation failed: %w"
	if len(v.Pairs) == 0 {
		return xerror.Errorf(validationErrorHeader, xerror.New("at least one extractor/strategy pair is required"))
	}
	if hasDupPairs(v.Pairs) {
		return xerror.Errorf(validationErrorHeader, xerror.New("extractor/strategy pairs must be unique"))
	}
	if v.WindowSeconds <= 0 {
		return xerror.Errorf(validationErrorHeader, xerror.New("window seconds must be positive"))
	}
	if len([]rune(v.QuitKey)) > 1 {
		return xerror.Errorf(validationErrorHeader, xerror.New("quit key must be a single character"))
	}
	if v.Detector.Type != "center" && len(v.Detector.CascadePath) == 0 {
		return xerror.Errorf(validationErrorHeader, xerror.Errorf("%s detector needs a cascade path", v.Detector.Type))
	}
	if v.MQTT.Enabled && len(v.MQTT.Broker) == 0 {
		return xerror.Errorf(validationErrorHeader, xerror.New("mqtt broker address is required when mqtt is enabled"))
	}
	if v.Dataset.Enabled && !contains(splits, v.Dataset.Split) {
		return xerror.Errorf(validationErrorHeader, xerror.Errorf("dataset split must be one of %s", strings.Join(splits, ", ")))
	}
	return nil
}

// Key returns the quit key as the code a display reports, zero if unset.
func (v Values) Key() int {
	r := []rune(v.QuitKey)
	if len(r) == 0 {
		return 0
	}
	return int(r[0])
}

func (p Pair) String() string {
	return fmt.Sprintf("%s/%s", p.Extractor, p.Strategy)
}

func hasDupPairs(pairs []Pair) bool {
	seen := map[Pair]bool{}
	for _, p := range pairs {
		if seen[p] {
			return true
		}
		seen[p] = true
	}
	return false
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
