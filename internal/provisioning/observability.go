package provisioning

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/imamik/puppetctl/internal/platform/ec2"
)

// Observer receives progress output and structured events from the
// provisioning flows.
type Observer interface {
	Logger

	// Event emits a structured event.
	Event(event Event)

	// Progress reports how far a multi-step phase has come.
	Progress(phase string, current, total int)
}

// EventType identifies what happened.
type EventType string

const (
	EventPhaseStarted   EventType = "phase.started"
	EventPhaseCompleted EventType = "phase.completed"
	EventPhaseFailed    EventType = "phase.failed"

	EventInstanceLaunched EventType = "instance.launched"
	EventInstanceTagged   EventType = "instance.tagged"
	EventGroupCreated     EventType = "security_group.created"
	EventGroupReused      EventType = "security_group.reused"
	EventPuppetInstalled  EventType = "puppet.installed"
)

// ResourceKind names the object an event is about.
type ResourceKind string

const (
	KindInstance      ResourceKind = "instance"
	KindSecurityGroup ResourceKind = "security-group"
	KindHost          ResourceKind = "host"
)

// Event is one structured provisioning event.
type Event struct {
	Type      EventType
	Phase     string
	Kind      ResourceKind
	Resource  string // instance ID, group ID or host
	Message   string
	Timestamp time.Time
	Fields    map[string]string
}

// ConsoleObserver writes events as single lines through a standard logger.
type ConsoleObserver struct {
	logger *log.Logger
}

// NewConsoleObserver creates a console observer writing to the default logger.
func NewConsoleObserver() *ConsoleObserver {
	return NewConsoleObserverWithLogger(log.Default())
}

// NewConsoleObserverWithLogger creates a console observer writing to logger.
func NewConsoleObserverWithLogger(logger *log.Logger) *ConsoleObserver {
	return &ConsoleObserver{logger: logger}
}

// Printf implements Logger.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	o.logger.Printf(format, v...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	o.logger.Print(formatEvent(event))
}

// Progress implements Observer.
func (o *ConsoleObserver) Progress(phase string, current, total int) {
	if total == 0 {
		o.logger.Printf("[%s] Progress: %d/%d", phase, current, total)
		return
	}
	o.logger.Printf("[%s] Progress: %d/%d (%d%%)", phase, current, total, current*100/total)
}

// formatEvent renders "type [phase] kind/resource message (k=v, ...)" with
// fields sorted by key.
func formatEvent(event Event) string {
	parts := []string{string(event.Type)}

	if event.Phase != "" {
		parts = append(parts, "["+event.Phase+"]")
	}

	switch {
	case event.Kind != "" && event.Resource != "":
		parts = append(parts, string(event.Kind)+"/"+event.Resource)
	case event.Resource != "":
		parts = append(parts, event.Resource)
	}

	if event.Message != "" {
		parts = append(parts, event.Message)
	}

	if len(event.Fields) > 0 {
		keys := make([]string, 0, len(event.Fields))
		for k := range event.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fields := make([]string, len(keys))
		for i, k := range keys {
			fields[i] = k + "=" + event.Fields[k]
		}
		parts = append(parts, "("+strings.Join(fields, ", ")+")")
	}

	return strings.Join(parts, " ")
}

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{Type: EventPhaseStarted, Phase: phase, Message: "starting"})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogInstanceLaunched logs an accepted launch request.
func LogInstanceLaunched(observer Observer, phase, role string, inst *ec2.Instance) {
	observer.Event(Event{
		Type:     EventInstanceLaunched,
		Phase:    phase,
		Kind:     KindInstance,
		Resource: inst.ID,
		Fields: map[string]string{
			"image": inst.ImageID,
			"role":  role,
			"type":  inst.InstanceType,
		},
	})
}

// LogInstanceTagged logs one tag write.
func LogInstanceTagged(observer Observer, phase, instanceID, key, value string) {
	observer.Event(Event{
		Type:     EventInstanceTagged,
		Phase:    phase,
		Kind:     KindInstance,
		Resource: instanceID,
		Message:  key + "=" + value,
	})
}

// LogSecurityGroup logs whether the group was reused or created.
func LogSecurityGroup(observer Observer, phase string, group *ec2.SecurityGroup, outcome string) {
	eventType := EventGroupReused
	if outcome == GroupCreated {
		eventType = EventGroupCreated
	}
	observer.Event(Event{
		Type:     eventType,
		Phase:    phase,
		Kind:     KindSecurityGroup,
		Resource: group.ID,
		Fields:   map[string]string{"name": group.Name},
	})
}

// LogPuppetInstalled logs a finished package install.
func LogPuppetInstalled(observer Observer, phase, role, host string) {
	observer.Event(Event{
		Type:     EventPuppetInstalled,
		Phase:    phase,
		Kind:     KindHost,
		Resource: host,
		Fields:   map[string]string{"role": role},
	})
}
