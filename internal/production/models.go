package production

import (
	"strings"
	"time"
)

// ContentType identifies the kind of accessibility deliverable an asset
// represents. The set is fixed; templates and analytics key off these codes.
type ContentType string

const (
	ContentTypeAudioDescription      ContentType = "AD"
	ContentTypeExtendedAD            ContentType = "EAD"
	ContentTypeClosedCaptions        ContentType = "CC"
	ContentTypeOpenCaptions          ContentType = "OC"
	ContentTypeSDH                   ContentType = "SDH"
	ContentTypeSignLanguageVideo     ContentType = "SLV"
	ContentTypeDescriptiveTranscript ContentType = "DT"
	ContentTypeEasyReadCaptions      ContentType = "ER"
	ContentTypeAudioNavigation       ContentType = "AN"
)

var allContentTypes = []ContentType{
	ContentTypeAudioDescription,
	ContentTypeExtendedAD,
	ContentTypeClosedCaptions,
	ContentTypeOpenCaptions,
	ContentTypeSDH,
	ContentTypeSignLanguageVideo,
	ContentTypeDescriptiveTranscript,
	ContentTypeEasyReadCaptions,
	ContentTypeAudioNavigation,
}

var contentTypeNames = map[ContentType]string{
	ContentTypeAudioDescription:      "audio description",
	ContentTypeExtendedAD:            "extended audio description",
	ContentTypeClosedCaptions:        "closed captions",
	ContentTypeOpenCaptions:          "open captions",
	ContentTypeSDH:                   "subtitles for the deaf and hard of hearing",
	ContentTypeSignLanguageVideo:     "sign language video",
	ContentTypeDescriptiveTranscript: "descriptive transcript",
	ContentTypeEasyReadCaptions:      "easy-read captions",
	ContentTypeAudioNavigation:       "audio navigation",
}

// AllContentTypes returns the ordered list of known content type codes.
func AllContentTypes() []ContentType {
	cp := make([]ContentType, len(allContentTypes))
	copy(cp, allContentTypes)
	return cp
}

// ParseContentType converts a string into a known ContentType.
func ParseContentType(value string) (ContentType, bool) {
	normalized := ContentType(strings.ToUpper(strings.TrimSpace(value)))
	_, ok := contentTypeNames[normalized]
	return normalized, ok
}

// Description returns the lowercase human name for a content type code.
func (c ContentType) Description() string {
	return contentTypeNames[c]
}

// AssetStatus represents the production state of a content asset as driven
// by the surrounding CRUD layer.
type AssetStatus string

const (
	AssetStatusPlanned    AssetStatus = "planned"
	AssetStatusInProgress AssetStatus = "in_progress"
	AssetStatusDelivered  AssetStatus = "delivered"
	AssetStatusOnHold     AssetStatus = "on_hold"
	AssetStatusCancelled  AssetStatus = "cancelled"
)

var assetStatusSet = map[AssetStatus]struct{}{
	AssetStatusPlanned:    {},
	AssetStatusInProgress: {},
	AssetStatusDelivered:  {},
	AssetStatusOnHold:     {},
	AssetStatusCancelled:  {},
}

// ParseAssetStatus converts a string into a known AssetStatus.
func ParseAssetStatus(value string) (AssetStatus, bool) {
	normalized := AssetStatus(strings.ToLower(strings.TrimSpace(value)))
	_, ok := assetStatusSet[normalized]
	return normalized, ok
}

// PersonKind is the discriminator of the person union a credit points at.
// The kind and the foreign key travel together in a PersonRef so an invalid
// (kind, key) pair cannot be represented.
type PersonKind string

const (
	PersonScriptwriter  PersonKind = "scriptwriter"
	PersonVoiceArtist   PersonKind = "voice_artist"
	PersonSLInterpreter PersonKind = "sl_interpreter"
	PersonStaff         PersonKind = "staff"
)

var personKindSet = map[PersonKind]struct{}{
	PersonScriptwriter:  {},
	PersonVoiceArtist:   {},
	PersonSLInterpreter: {},
	PersonStaff:         {},
}

// ParsePersonKind converts a string into a known PersonKind.
func ParsePersonKind(value string) (PersonKind, bool) {
	normalized := PersonKind(strings.ToLower(strings.TrimSpace(value)))
	_, ok := personKindSet[normalized]
	return normalized, ok
}

// PersonRef is a tagged reference to one person record.
type PersonRef struct {
	Kind PersonKind
	ID   int64
}

// SpeedTier selects one of the three effort columns on a template.
type SpeedTier string

const (
	TierFast    SpeedTier = "A"
	TierNormal  SpeedTier = "B"
	TierRelaxed SpeedTier = "C"
)

// ParseSpeedTier converts a string into a known SpeedTier.
func ParseSpeedTier(value string) (SpeedTier, bool) {
	normalized := SpeedTier(strings.ToUpper(strings.TrimSpace(value)))
	switch normalized {
	case TierFast, TierNormal, TierRelaxed:
		return normalized, true
	}
	return "", false
}

// Pipeline stages. Every project moves through these four in order unless
// moved manually.
const (
	StagePrep         = 1
	StageScripting    = 2
	StageProduction   = 3
	StageDistribution = 4
	StageCount        = 4
)

var stageNames = map[int]string{
	StagePrep:         "prep",
	StageScripting:    "scripting",
	StageProduction:   "production",
	StageDistribution: "distribution",
}

// StageName returns the short name of a pipeline stage, or "" when unknown.
func StageName(stage int) string {
	return stageNames[stage]
}

// ValidStage reports whether stage is one of the four pipeline stages.
func ValidStage(stage int) bool {
	return stage >= StagePrep && stage <= StageDistribution
}

// ProjectStatus represents the lifecycle of a tracked project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectPaused    ProjectStatus = "paused"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
	ProjectArchived  ProjectStatus = "archived"
)

var projectStatusSet = map[ProjectStatus]struct{}{
	ProjectActive:    {},
	ProjectPaused:    {},
	ProjectCompleted: {},
	ProjectCancelled: {},
	ProjectArchived:  {},
}

// ParseProjectStatus converts a string into a known ProjectStatus.
func ParseProjectStatus(value string) (ProjectStatus, bool) {
	normalized := ProjectStatus(strings.ToLower(strings.TrimSpace(value)))
	_, ok := projectStatusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a project status permits no further work.
func (s ProjectStatus) IsTerminal() bool {
	switch s {
	case ProjectCompleted, ProjectCancelled, ProjectArchived:
		return true
	default:
		return false
	}
}

// TaskStatus represents the lifecycle of a single task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskBlocked    TaskStatus = "blocked"
)

var taskStatusSet = map[TaskStatus]struct{}{
	TaskPending:    {},
	TaskInProgress: {},
	TaskCompleted:  {},
	TaskBlocked:    {},
}

// ParseTaskStatus converts a string into a known TaskStatus.
func ParseTaskStatus(value string) (TaskStatus, bool) {
	normalized := TaskStatus(strings.ToLower(strings.TrimSpace(value)))
	_, ok := taskStatusSet[normalized]
	return normalized, ok
}

// ContentAsset is one accessibility deliverable for one film.
type ContentAsset struct {
	ID          int64
	Key         string
	Title       string
	ContentType ContentType
	TrackName   string
	Status      AssetStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Credit links a content asset to one person with a role.
type Credit struct {
	ID         int64
	AssetID    int64
	Person     PersonRef
	PersonName string
	RoleLabel  string
	Primary    bool
	Seq        int
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// Template is a reusable work-unit definition keyed by
// (content type, stage, task order). The three hour columns per track are
// the speed tiers A, B, and C.
type Template struct {
	ID          int64
	ContentType ContentType
	Stage       int
	TaskOrder   int
	TaskName    string

	HoursA float64
	HoursB float64
	HoursC float64

	RequiresReview bool
	ReviewHoursA   float64
	ReviewHoursB   float64
	ReviewHoursC   float64

	RequiresMonitoring bool
	MonitoringHoursA   float64
	MonitoringHoursB   float64
	MonitoringHoursC   float64

	Required      bool
	Parallel      bool
	Prerequisites []string
	Checklist     []string

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TemplateKey is the natural key templates are diffed by during bulk replace.
type TemplateKey struct {
	Stage     int
	TaskOrder int
}

// Key returns the template's (stage, order) natural key.
func (t Template) Key() TemplateKey {
	return TemplateKey{Stage: t.Stage, TaskOrder: t.TaskOrder}
}

// TemplateReplacePlan is the all-or-nothing write set a bulk template
// replace resolves to. The store applies it in one transaction.
type TemplateReplacePlan struct {
	ContentType   ContentType
	Updates       []Template
	Inserts       []Template
	DeactivateIDs []int64
}

// Project tracks the production of one content asset through the pipeline.
// At most one project ever exists per asset.
type Project struct {
	ID                  int64
	Key                 string
	AssetID             int64
	Stage               int
	Status              ProjectStatus
	Progress            float64
	Tier                SpeedTier
	StartedAt           time.Time
	EstimatedCompletion *time.Time
	CompletedAt         *time.Time
	AutoCreated         bool
	TriggerReason       string
	Priority            int
	Pinned              bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Task is one unit of work inside a project. Main, review, and monitoring
// effort are tracked independently; review and monitoring only exist when
// the generating template required them.
type Task struct {
	ID        int64
	ProjectID int64
	Stage     int
	TaskName  string
	TaskOrder int
	Status    TaskStatus

	AssignedCreditID *int64
	ReviewerCreditID *int64
	MonitorCreditID  *int64

	PlannedHours float64
	ActualHours  float64

	ReviewRequired     bool
	PlannedReviewHours float64
	ActualReviewHours  float64
	ReviewDone         bool

	MonitoringRequired     bool
	PlannedMonitoringHours float64
	ActualMonitoringHours  float64
	MonitoringDone         bool

	QualityScore      *int
	ReworkCount       int
	ChecklistProgress map[string]bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Participant is the denormalized credit snapshot stored on an archive.
type Participant struct {
	CreditID   int64      `json:"credit_id"`
	PersonID   int64      `json:"person_id"`
	PersonKind PersonKind `json:"person_kind"`
	Name       string     `json:"name"`
	Role       string     `json:"role"`
	Primary    bool       `json:"primary"`
}

// Archive is the immutable historical record of a completed project. All
// fields are copied by value; nothing references live rows.
type Archive struct {
	ID             int64
	Key            string
	ProjectID      int64
	AssetTitle     string
	ContentType    ContentType
	TrackName      string
	Tier           SpeedTier
	StartedAt      time.Time
	CompletedAt    time.Time
	TotalDays      int
	TotalHours     float64
	Participants   []Participant
	StageHours     map[int]float64
	Efficiency     *float64
	AverageQuality *float64
	CreatedAt      time.Time
}
