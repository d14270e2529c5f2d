package lifecycle

const (
	EnvNameNotifySocket string = "NOTIFY_SOCKET"
	ReadyMessage        string = "READY=1"
	StoppingMessage     string = "STOPPING=1"
)
