package templating

import (
	"fmt"
	"strings"
)

// Encoding is the SMS character set a message fits in.
type Encoding string

const (
	EncodingGSM7 Encoding = "GSM-7"
	EncodingUCS2 Encoding = "UCS-2"
)

// gsm7Alphabet is the GSM 03.38 basic set plus the extension table.
const gsm7Alphabet = "@£$¥èéùìòÇ\nØø\rÅåΔ_ΦΓΛΩΠΨΣΘΞÆæßÉ !\"#¤%&'()*+,-./0123456789:;<=>?" +
	"¡ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÑÜ§¿abcdefghijklmnopqrstuvwxyzäöñüà" +
	"\f^{}\\[~]|€"

// SegmentInfo is the SMS metadata of a finished message.
type SegmentInfo struct {
	CharacterCount int      `json:"characterCount"`
	SegmentCount   int      `json:"segmentCount"`
	Encoding       Encoding `json:"encoding"`
	Warnings       []string `json:"warnings"`
}

// CharacterCount counts UTF-16 code units, the unit carriers bill on.
func CharacterCount(message string) int {
	n := 0
	for _, r := range message {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// SegmentCount is 1 up to 160 characters, then ceil(n/153).
func SegmentCount(characters int) int {
	if characters <= SMSSingleSegmentLimit {
		return 1
	}
	return (characters + SMSMultiSegmentLimit - 1) / SMSMultiSegmentLimit
}

// Segment computes character and segment counts for message and the
// warnings an author should see before it goes out. The 160/153 rule applies
// to every message; a UCS-2 encoding is reported but not counted differently.
func Segment(message string) SegmentInfo {
	count := CharacterCount(message)
	info := SegmentInfo{
		CharacterCount: count,
		SegmentCount:   SegmentCount(count),
		Encoding:       detectEncoding(message),
		Warnings:       make([]string, 0),
	}

	if info.SegmentCount == 1 {
		remaining := SMSSingleSegmentLimit - count
		if remaining <= SMSWarningMargin {
			info.Warnings = append(info.Warnings, fmt.Sprintf(WarnNearSingleLimitFmt, count, remaining))
		}
	} else {
		info.Warnings = append(info.Warnings, fmt.Sprintf(WarnMultiSegmentFmt, count, info.SegmentCount))
		remaining := info.SegmentCount*SMSMultiSegmentLimit - count
		if remaining <= SMSWarningMargin {
			info.Warnings = append(info.Warnings, fmt.Sprintf(WarnNearSegmentLimitFmt, remaining, info.SegmentCount))
		}
	}

	if info.Encoding == EncodingUCS2 {
		info.Warnings = append(info.Warnings, WarnNonGSMCharacters)
	}
	return info
}

func detectEncoding(message string) Encoding {
	for _, r := range message {
		if !strings.ContainsRune(gsm7Alphabet, r) {
			return EncodingUCS2
		}
	}
	return EncodingGSM7
}
