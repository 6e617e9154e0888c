package config

import "github.com/tauraamui/rppgtracker/pkg/configdef"

type defaultSettingKey uint

const (
	VIDEOBACKEND  defaultSettingKey = 0x0
	SOURCE        defaultSettingKey = 0x1
	DETECTOR      defaultSettingKey = 0x2
	TIMELIMIT     defaultSettingKey = 0x3
	SKIPCOUNT     defaultSettingKey = 0x4
	BUDGET        defaultSettingKey = 0x5
	WINDOWSECONDS defaultSettingKey = 0x6
	LIVEINTERVAL  defaultSettingKey = 0x7
	QUITKEY       defaultSettingKey = 0x8
	MQTTTOPIC     defaultSettingKey = 0x9
	MQTTCLIENTID  defaultSettingKey = 0xA
	PAIRS         defaultSettingKey = 0xB
	RETAINDAYS    defaultSettingKey = 0xC
)

var defaultSettings = map[defaultSettingKey]interface{}{
	VIDEOBACKEND:  "opencv",
	SOURCE:        "0",
	DETECTOR:      "center",
	TIMELIMIT:     30,
	SKIPCOUNT:     10,
	BUDGET:        "elapsed",
	WINDOWSECONDS: 1.5,
	LIVEINTERVAL:  15,
	QUITKEY:       "q",
	MQTTTOPIC:     "rppg/live",
	MQTTCLIENTID:  "rppgd",
	RETAINDAYS:    30,
	PAIRS: []configdef.Pair{
		{Extractor: "cheeks_and_nose", Strategy: "green"},
	},
}
