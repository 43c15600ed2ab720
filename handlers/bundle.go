package handlers

// HandlerBundle groups all endpoint handlers into one struct so route
// registration takes a single argument.
type HandlerBundle struct {
	Requests      *RequestHandler
	Appointments  *AppointmentHandler
	Notifications *NotificationHandler
	Stream        *StreamHandler
	Devices       *DeviceHandler
}
