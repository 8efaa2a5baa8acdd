package service

import (
	"regexp"
	"strings"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

// PoolSizes carries the resource counts that drive severity escalation.
type PoolSizes struct {
	Teachers int
	Rooms    int
}

// Classification is the diagnosed type, severity and extracted hints of a failure reason.
type Classification struct {
	Type          models.ConflictType
	Severity      models.Severity
	ExtractedInfo map[string]string
}

type keywordRule struct {
	conflictType models.ConflictType
	keywords     []string
}

// checked in order; the first rule with a matching keyword wins
var classificationRules = []keywordRule{
	{models.ConflictNoTeacher, []string{"无教师", "没有教师", "无老师", "没有老师", "教师不可用", "老师不可用", "no teacher", "no available teacher", "teacher unavailable"}},
	{models.ConflictNoSubject, []string{"科目", "学科", "subject"}},
	{models.ConflictNoTime, []string{"时间", "时段冲突", "time"}},
	{models.ConflictNoRoom, []string{"教室", "room", "capacity", "campus"}},
	{models.ConflictHourLimit, []string{"课时", "上限", "hour", "limit"}},
}

var (
	teacherNamePattern = regexp.MustCompile(`(?:老师|教师)「([^」]+)」|(?i:teacher)\s+"([^"]+)"`)
	campusPattern      = regexp.MustCompile(`校区「([^」]+)」|(?i:campus)\s+"([^"]+)"`)
	subjectPattern     = regexp.MustCompile(`(?:教授|科目)「([^」]+)」|(?i:subject)\s+"([^"]+)"`)
)

// Classify maps a failure reason to a conflict type and severity. Student may be nil.
func Classify(reason string, pools PoolSizes, student *models.Student) Classification {
	conflictType := detectType(reason)
	return Classification{
		Type:          conflictType,
		Severity:      severityFor(conflictType, pools, student),
		ExtractedInfo: extractInfo(reason),
	}
}

func detectType(reason string) models.ConflictType {
	lowered := strings.ToLower(reason)
	for _, rule := range classificationRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.conflictType
			}
		}
	}
	return models.ConflictOther
}

func severityFor(conflictType models.ConflictType, pools PoolSizes, student *models.Student) models.Severity {
	switch conflictType {
	case models.ConflictNoTeacher, models.ConflictNoSubject, models.ConflictHourLimit:
		return models.SeverityHigh
	case models.ConflictNoTime:
		if pools.Teachers <= 2 {
			return models.SeverityHigh
		}
		return models.SeverityMedium
	case models.ConflictNoRoom:
		if pools.Rooms <= 2 {
			return models.SeverityMedium
		}
		return models.SeverityLow
	}
	if student == nil {
		return models.SeverityLow
	}
	switch {
	case student.RemainingHours >= 20:
		return models.SeverityHigh
	case student.RemainingHours >= 10:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func extractInfo(reason string) map[string]string {
	info := make(map[string]string)
	for key, pattern := range map[string]*regexp.Regexp{
		"teacherName": teacherNamePattern,
		"campus":      campusPattern,
		"subject":     subjectPattern,
	} {
		if value := firstGroup(pattern, reason); value != "" {
			info[key] = value
		}
	}
	return info
}

func firstGroup(pattern *regexp.Regexp, text string) string {
	match := pattern.FindStringSubmatch(text)
	if len(match) == 0 {
		return ""
	}
	for _, group := range match[1:] {
		if group != "" {
			return group
		}
	}
	return ""
}
