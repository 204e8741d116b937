// Package useragent buckets raw User-Agent strings into the device and
// operating-system values used by audience rules.
package useragent

import "strings"

const (
	Mobile  = "Mobile"
	Tablet  = "Tablet"
	Desktop = "Desktop"

	MacOS   = "MacOS"
	Windows = "Windows"
	Linux   = "Linux"
	IOS     = "iOS"
	Android = "Android"
	Unknown = "Unknown"
)

var (
	mobileKeywords = []string{"mobile", "android", "iphone", "ipod", "blackberry", "windows phone"}
	tabletKeywords = []string{"ipad", "tablet"}
)

// osRules are checked in order; the first match wins.
var osRules = []struct {
	keywords []string
	name     string
}{
	{[]string{"macintosh", "mac os x"}, MacOS},
	{[]string{"windows"}, Windows},
	{[]string{"linux"}, Linux},
	{[]string{"iphone", "ipad", "ipod"}, IOS},
	{[]string{"android"}, Android},
}

type Info struct {
	Device string
	OS     string
}

func Classify(ua string) Info {
	return Info{Device: DeviceType(ua), OS: OperatingSystem(ua)}
}

// DeviceType checks mobile keywords before tablet ones; anything else,
// including an empty string, is Desktop.
func DeviceType(ua string) string {
	s := strings.ToLower(ua)
	if containsAny(s, mobileKeywords) {
		return Mobile
	}
	if containsAny(s, tabletKeywords) {
		return Tablet
	}
	return Desktop
}

func OperatingSystem(ua string) string {
	s := strings.ToLower(ua)
	for _, rule := range osRules {
		if containsAny(s, rule.keywords) {
			return rule.name
		}
	}
	return Unknown
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
