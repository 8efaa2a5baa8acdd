package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
)

func TestClassifyKeywordPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		want   models.ConflictType
	}{
		{name: "teacher beats room", reason: "无教师，也没有教室", want: models.ConflictNoTeacher},
		{name: "subject beats time", reason: "科目不匹配导致无可用时间", want: models.ConflictNoSubject},
		{name: "time beats room", reason: "时间冲突且教室不足", want: models.ConflictNoTime},
		{name: "room beats hours", reason: "教室容量不足，课时已满", want: models.ConflictNoRoom},
		{name: "hour limit", reason: "本周课时已达上限", want: models.ConflictHourLimit},
		{name: "english teacher", reason: "No available teacher for slot", want: models.ConflictNoTeacher},
		{name: "english room", reason: "Room capacity exceeded", want: models.ConflictNoRoom},
		{name: "english limit", reason: "weekly HOUR limit reached", want: models.ConflictHourLimit},
		{name: "unknown", reason: "未能排课：原因未知", want: models.ConflictOther},
		{name: "empty", reason: "", want: models.ConflictOther},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.reason, PoolSizes{Teachers: 5, Rooms: 5}, nil)
			assert.Equal(t, tc.want, got.Type)
		})
	}
}

func TestClassifySeverity(t *testing.T) {
	busy := &models.Student{RemainingHours: 25}
	moderate := &models.Student{RemainingHours: 10}
	light := &models.Student{RemainingHours: 9.5}

	tests := []struct {
		name    string
		reason  string
		pools   PoolSizes
		student *models.Student
		want    models.Severity
	}{
		{name: "no teacher always high", reason: "无教师可用", pools: PoolSizes{Teachers: 10}, want: models.SeverityHigh},
		{name: "subject always high", reason: "科目不匹配", want: models.SeverityHigh},
		{name: "hour limit always high", reason: "课时已达上限", want: models.SeverityHigh},
		{name: "time with small teacher pool", reason: "无可用时间", pools: PoolSizes{Teachers: 2}, want: models.SeverityHigh},
		{name: "time with larger teacher pool", reason: "无可用时间", pools: PoolSizes{Teachers: 3}, want: models.SeverityMedium},
		{name: "room with small pool", reason: "教室已被占用", pools: PoolSizes{Rooms: 2}, want: models.SeverityMedium},
		{name: "room with larger pool", reason: "教室已被占用", pools: PoolSizes{Rooms: 3}, want: models.SeverityLow},
		{name: "other with many hours", reason: "原因未知", student: busy, want: models.SeverityHigh},
		{name: "other at ten hours", reason: "原因未知", student: moderate, want: models.SeverityMedium},
		{name: "other with few hours", reason: "原因未知", student: light, want: models.SeverityLow},
		{name: "other without student", reason: "原因未知", want: models.SeverityLow},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.reason, tc.pools, tc.student).Severity)
		})
	}
}

func TestClassifyExtractsHints(t *testing.T) {
	got := Classify("教师课时已达上限：老师「王老师」本周课时已满", PoolSizes{}, nil)
	assert.Equal(t, "王老师", got.ExtractedInfo["teacherName"])

	got = Classify("无合适教室：校区「north」没有容量≥2的教室", PoolSizes{}, nil)
	assert.Equal(t, "north", got.ExtractedInfo["campus"])

	got = Classify(`no teacher for subject "physics", teacher "Ada" is full`, PoolSizes{}, nil)
	assert.Equal(t, "physics", got.ExtractedInfo["subject"])
	assert.Equal(t, "Ada", got.ExtractedInfo["teacherName"])

	got = Classify("原因未知", PoolSizes{}, nil)
	assert.Empty(t, got.ExtractedInfo)
}
