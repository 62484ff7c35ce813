package models

// DataField is one simulated record in the data center table.
type DataField struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	CreateTime  string `json:"createTime"`
	Status      string `json:"status"`
	Value       string `json:"value"`
}

// Device status tags shown on the device dashboard.
const (
	DeviceNormal  = "normal"
	DeviceWarning = "warning"
	DeviceOffline = "offline"
)

// Device is one simulated unit on the device dashboard with its latest
// telemetry sample.
type Device struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Temperature int    `json:"temperature"`
	Humidity    int    `json:"humidity"`
	Voltage     int    `json:"voltage"`
	Uptime      int    `json:"uptime"`
	LastReport  string `json:"lastReport"`
	IP          string `json:"ip"`
}

// Activity is one row of the recent-activity feed.
type Activity struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
	Time    string `json:"time"`
}
