package services

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/koweyli/vantage-console/internal/models"
)

// maxGenerated caps how many simulated records a single request may ask for.
const maxGenerated = 1000

// DataQuery is the data-center request: how many records to simulate, the
// filter chain, pagination, page-local sorting and an optional in-place
// update.
type DataQuery struct {
	Value           int              `json:"value"`
	Page            int              `json:"page"`
	PageSize        int              `json:"pageSize"`
	FieldName       string           `json:"fieldName"`
	FieldType       string           `json:"fieldType"`
	Status          string           `json:"status"`
	Keyword         string           `json:"keyword"`
	CreateTimeStart string           `json:"createTimeStart"`
	CreateTimeEnd   string           `json:"createTimeEnd"`
	SortField       string           `json:"sortField"`
	SortOrder       string           `json:"sortOrder"`
	Update          *DataFieldUpdate `json:"updateData"`
}

// DataFieldUpdate merges non-empty fields onto the record with the given id.
type DataFieldUpdate struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Value       string `json:"value"`
}

// UpdateOutcome reports whether the optional update in a DataQuery was
// applied.
type UpdateOutcome struct {
	Updated     bool              `json:"updated"`
	UpdatedID   int               `json:"updatedId,omitempty"`
	UpdatedItem *models.DataField `json:"updatedItem"`
	Message     string            `json:"message"`
	Time        string            `json:"Time,omitempty"`
}

// DataResult is the data-center response page.
type DataResult struct {
	Items       []models.DataField `json:"data"`
	Total       int                `json:"total"`
	CurrentPage int                `json:"currentPage"`
	TotalPages  int                `json:"totalPages"`
	SortField   string             `json:"sortField"`
	SortOrder   string             `json:"sortOrder"`
	Update      UpdateOutcome      `json:"updateResult"`
}

// DataCenterService simulates the data-center table, the device fleet and
// the recent-activity feed. The device fleet is held in memory and its
// telemetry refreshed periodically by the scheduler.
type DataCenterService struct {
	mu    sync.Mutex
	rng   *rand.Rand
	fleet []models.Device
}

// NewDataCenterService seeds the generator and the device fleet.
func NewDataCenterService() *DataCenterService {
	s := &DataCenterService{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	s.RefreshDevices()
	return s
}

// Query simulates the requested number of records, applies the optional
// update and the filter chain, then paginates. Sorting applies to the
// current page only; the frontend sorts what it displays.
func (s *DataCenterService) Query(q DataQuery) DataResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := q.Value
	if count < 0 {
		count = 0
	}
	if count > maxGenerated {
		count = maxGenerated
	}
	data := s.generateFields(count)

	outcome := UpdateOutcome{Message: "no update requested"}
	if q.Update != nil && q.Update.ID != 0 {
		outcome = applyUpdate(data, *q.Update)
	}

	filtered := filterFields(data, q)

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	start := (page - 1) * pageSize
	var paged []models.DataField
	if start < len(filtered) {
		end := start + pageSize
		if end > len(filtered) {
			end = len(filtered)
		}
		paged = append([]models.DataField{}, filtered[start:end]...)
	} else {
		paged = []models.DataField{}
	}

	sortField := q.SortField
	if sortField == "" {
		sortField = "id"
	}
	sortOrder := q.SortOrder
	if sortOrder == "" {
		sortOrder = "asc"
	}
	sortPage(paged, sortField, sortOrder)

	totalPages := (len(filtered) + pageSize - 1) / pageSize
	return DataResult{
		Items:       paged,
		Total:       len(filtered),
		CurrentPage: page,
		TotalPages:  totalPages,
		SortField:   sortField,
		SortOrder:   sortOrder,
		Update:      outcome,
	}
}

func (s *DataCenterService) generateFields(count int) []models.DataField {
	types := []string{"string", "number", "boolean", "date"}
	statuses := []string{"active", "inactive"}
	out := make([]models.DataField, count)
	for i := range out {
		out[i] = models.DataField{
			ID:          i + 1,
			Name:        fmt.Sprintf("field_%d", i+1),
			Type:        types[s.rng.Intn(len(types))],
			Description: fmt.Sprintf("Description for field %d", i+1),
			CreateTime:  fmt.Sprintf("2023-%02d-%02d", s.rng.Intn(12)+1, s.rng.Intn(28)+1),
			Status:      statuses[s.rng.Intn(len(statuses))],
			Value:       fmt.Sprintf("value_%d", s.rng.Intn(1000)),
		}
	}
	return out
}

func applyUpdate(data []models.DataField, upd DataFieldUpdate) UpdateOutcome {
	for i := range data {
		if data[i].ID != upd.ID {
			continue
		}
		if upd.Name != "" {
			data[i].Name = upd.Name
		}
		if upd.Type != "" {
			data[i].Type = upd.Type
		}
		if upd.Description != "" {
			data[i].Description = upd.Description
		}
		if upd.Status != "" {
			data[i].Status = upd.Status
		}
		if upd.Value != "" {
			data[i].Value = upd.Value
		}
		item := data[i]
		return UpdateOutcome{
			Updated:     true,
			UpdatedID:   upd.ID,
			UpdatedItem: &item,
			Message:     "record updated",
			Time:        time.Now().Format("2006-01-02 15:04:05"),
		}
	}
	return UpdateOutcome{UpdatedID: upd.ID, Message: "no record with that id"}
}

func filterFields(data []models.DataField, q DataQuery) []models.DataField {
	out := make([]models.DataField, 0, len(data))
	for _, d := range data {
		if q.FieldName != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(q.FieldName)) {
			continue
		}
		if q.FieldType != "" && d.Type != q.FieldType {
			continue
		}
		if q.Status != "" && d.Status != q.Status {
			continue
		}
		if q.Keyword != "" && !matchesKeyword(d, q.Keyword) {
			continue
		}
		// Date strings are zero-padded so lexical comparison is ordering.
		if q.CreateTimeStart != "" && q.CreateTimeEnd != "" {
			if d.CreateTime < q.CreateTimeStart || d.CreateTime > q.CreateTimeEnd {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

func matchesKeyword(d models.DataField, keyword string) bool {
	k := strings.ToLower(keyword)
	fields := []string{
		fmt.Sprintf("%d", d.ID), d.Name, d.Type, d.Description, d.CreateTime, d.Status, d.Value,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), k) {
			return true
		}
	}
	return false
}

func sortPage(page []models.DataField, field, order string) {
	asc := order != "desc"
	sort.SliceStable(page, func(i, j int) bool {
		var less bool
		switch field {
		case "id":
			less = page[i].ID < page[j].ID
		case "name":
			less = strings.ToLower(page[i].Name) < strings.ToLower(page[j].Name)
		case "type":
			less = strings.ToLower(page[i].Type) < strings.ToLower(page[j].Type)
		case "status":
			less = strings.ToLower(page[i].Status) < strings.ToLower(page[j].Status)
		case "createTime":
			less = page[i].CreateTime < page[j].CreateTime
		case "value":
			less = strings.ToLower(page[i].Value) < strings.ToLower(page[j].Value)
		default:
			less = page[i].ID < page[j].ID
		}
		if asc {
			return less
		}
		return !less
	})
}

// Devices returns the requested number of fleet devices, clamped to the
// fleet size.
func (s *DataCenterService) Devices(num int) []models.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	if num < 0 {
		num = 0
	}
	if num > len(s.fleet) {
		num = len(s.fleet)
	}
	return append([]models.Device{}, s.fleet[:num]...)
}

// RefreshDevices regenerates the fleet telemetry. The scheduler calls this
// periodically so consecutive dashboard loads see drifting readings.
func (s *DataCenterService) RefreshDevices() {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := []string{
		models.DeviceNormal, models.DeviceNormal, models.DeviceNormal,
		models.DeviceWarning, models.DeviceOffline,
	}
	fleet := make([]models.Device, maxGenerated)
	for i := range fleet {
		n := i + 1
		fleet[i] = models.Device{
			ID:          fmt.Sprintf("DEV-%d", 1000+n),
			Name:        fmt.Sprintf("Device %d", n),
			Status:      statuses[s.rng.Intn(len(statuses))],
			Temperature: 65 + s.rng.Intn(31),
			Humidity:    40 + s.rng.Intn(56),
			Voltage:     200 + s.rng.Intn(51),
			Uptime:      s.rng.Intn(501),
			LastReport:  fmt.Sprintf("%d minutes ago", s.rng.Intn(60)),
			IP:          fmt.Sprintf("192.168.0.%d", n),
		}
	}
	s.fleet = fleet
}

// Activities returns the synthetic recent-activity feed.
func (s *DataCenterService) Activities(count int) []models.Activity {
	if count < 0 {
		count = 0
	}
	users := []string{"User 1", "User 2", "User 3"}
	out := make([]models.Activity, count)
	for i := range out {
		out[i] = models.Activity{
			ID:      i + 1,
			Content: fmt.Sprintf("%s published a new article", users[i%len(users)]),
			Time:    fmt.Sprintf("2021-08-01 %02d:00:00", 10+i),
		}
	}
	return out
}
