package mapi

import "github.com/outlookcore/msgpst/props"

// namedPropKey identifies a named property by its (code, GUID) pair, the
// key type for namedCodeRegistry.
type namedPropKey struct {
	Code uint32
	GUID string
}

// namedCodeRegistry maps well-known numeric named-property ids within a
// property set to a symbolic atom.
// Covers representative PSETID_ADDRESS/APPOINTMENT/COMMON/TASK/LOG entries.
var namedCodeRegistry = map[namedPropKey]string{
	{0x8083, props.PSETID_Address}: "pid_lid_email1_display_name",
	{0x8084, props.PSETID_Address}: "pid_lid_email1_address_type",
	{0x8085, props.PSETID_Address}: "pid_lid_email1_email_address",
	{0x8080, props.PSETID_Address}: "pid_lid_home_address",

	{0x8205, props.PSETID_Appointment}: "pid_lid_busy_status",
	{0x820D, props.PSETID_Appointment}: "pid_lid_appointment_start_whole",
	{0x820E, props.PSETID_Appointment}: "pid_lid_appointment_end_whole",
	{0x8208, props.PSETID_Appointment}: "pid_lid_location",

	{0x8501, props.PSETID_Common}: "pid_lid_reminder_delta",
	{0x8503, props.PSETID_Common}: "pid_lid_reminder_set",
	{0x8226, props.PSETID_Common}: "pid_lid_private",
	{0x8084, props.PSETID_Common}: "pid_lid_recipient_display_name",

	{0x8101, props.PSETID_Task}: "pid_lid_task_status",
	{0x8102, props.PSETID_Task}: "pid_lid_percent_complete",
	{0x811C, props.PSETID_Task}: "pid_lid_task_complete",
	{0x8105, props.PSETID_Task}: "pid_lid_task_start_date",

	{0x8700, props.PSETID_Log}: "pid_lid_log_type",
	{0x8706, props.PSETID_Log}: "pid_lid_log_start",
	{0x8708, props.PSETID_Log}: "pid_lid_log_duration",
}

func lookupNamedCode(code uint32, guid string) (string, bool) {
	atom, ok := namedCodeRegistry[namedPropKey{Code: code, GUID: guid}]
	return atom, ok
}

// lookupNamedString resolves string-named properties under props.PS_INTERNET_HEADERS,
// which names properties by the RFC 2822 header they mirror.
func lookupNamedString(name, guid string) (string, bool) {
	if guid != props.PS_INTERNET_HEADERS {
		return "", false
	}
	return "pid_name_" + normalizeHeaderAtom(name), true
}

func normalizeHeaderAtom(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r-'A'+'a')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
