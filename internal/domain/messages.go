package domain

// Variant is the severity of a status message.
type Variant string

const (
	VariantDanger  Variant = "danger"
	VariantDefault Variant = "default"
)

// Icon marks a message that needs a distinguishing icon.
type Icon string

const IconPause Icon = "pause"

// Message is a user-facing status notice for one application.
// Title and Description may contain an {application} placeholder that the
// render layer resolves.
type Message struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
	CustomIcon  Icon    `json:"custom_icon,omitempty"`
}

// MessageDescriptor identifies a translatable string and its default text.
type MessageDescriptor struct {
	ID             string
	DefaultMessage string
}

// Translator resolves message descriptors to display text.
type Translator interface {
	FormatMessage(MessageDescriptor) string
}

// DefaultTranslator returns every descriptor's default message.
type DefaultTranslator struct{}

func (DefaultTranslator) FormatMessage(d MessageDescriptor) string { return d.DefaultMessage }

var (
	msgPausedTitle = MessageDescriptor{
		ID:             "sources.appPausedTitle",
		DefaultMessage: "{application} is paused",
	}
	msgPausedDescription = MessageDescriptor{
		ID:             "sources.appPausedDescription",
		DefaultMessage: "To resume data collection for this application, switch {application} on in the <b>Applications</b> section of this page.",
	}
	msgUnavailableTitle = MessageDescriptor{
		ID:             "sources.appUnavailableTitle",
		DefaultMessage: "This application is unavailable",
	}
)

// SynthesizeMessages returns a message for every application of the bundle
// that needs one, keyed by application id.
//
// Rules are checked in order and the first match wins:
//  1. paused cost-management application: paused notice
//  2. unavailable application with its own error: that error
//  3. application sharing an endpoint that reports an error: the endpoint error
//
// Applications matching no rule are left out.
func SynthesizeMessages(bundle SourceBundle, translator Translator, applicationTypes []ApplicationType) map[string]Message {
	if translator == nil {
		translator = DefaultTranslator{}
	}

	costManagementID := ""
	if appType, ok := FindApplicationTypeByName(applicationTypes, CostManagementAppName); ok {
		costManagementID = appType.ID
	}

	endpointError := ""
	if endpoint, ok := bundle.PrimaryEndpoint(); ok {
		endpointError = endpoint.AvailabilityStatusError
	}

	messages := make(map[string]Message)
	for _, app := range bundle.Applications {
		switch {
		case app.PausedAt != "" && costManagementID != "" && app.ApplicationTypeID == costManagementID:
			messages[app.ID] = Message{
				Title:       translator.FormatMessage(msgPausedTitle),
				Description: translator.FormatMessage(msgPausedDescription),
				Variant:     VariantDefault,
				CustomIcon:  IconPause,
			}
		case app.AvailabilityStatus == AvailabilityUnavailable && app.AvailabilityStatusError != "":
			messages[app.ID] = unavailableMessage(translator, app.AvailabilityStatusError)
		case endpointError != "" && app.HasEndpointAuthentication():
			messages[app.ID] = unavailableMessage(translator, endpointError)
		}
	}
	return messages
}

func unavailableMessage(translator Translator, description string) Message {
	return Message{
		Title:       translator.FormatMessage(msgUnavailableTitle),
		Description: description,
		Variant:     VariantDanger,
	}
}
