package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataCenterService_QueryPagination(t *testing.T) {
	svc := NewDataCenterService()

	result := svc.Query(DataQuery{Value: 95, Page: 2, PageSize: 10})
	assert.Equal(t, 95, result.Total)
	assert.Equal(t, 2, result.CurrentPage)
	assert.Equal(t, 10, result.TotalPages)
	assert.Len(t, result.Items, 10)
	assert.Equal(t, 11, result.Items[0].ID)

	last := svc.Query(DataQuery{Value: 95, Page: 10, PageSize: 10})
	assert.Len(t, last.Items, 5)

	past := svc.Query(DataQuery{Value: 95, Page: 11, PageSize: 10})
	assert.Empty(t, past.Items)
	assert.Equal(t, 95, past.Total)
}

func TestDataCenterService_QueryClampsCount(t *testing.T) {
	svc := NewDataCenterService()

	result := svc.Query(DataQuery{Value: 5000, PageSize: 1})
	assert.Equal(t, 1000, result.Total)

	result = svc.Query(DataQuery{Value: -3})
	assert.Equal(t, 0, result.Total)
}

func TestDataCenterService_QueryDefaults(t *testing.T) {
	svc := NewDataCenterService()

	result := svc.Query(DataQuery{Value: 30})
	assert.Equal(t, 1, result.CurrentPage)
	assert.Len(t, result.Items, 10)
	assert.Equal(t, "id", result.SortField)
	assert.Equal(t, "asc", result.SortOrder)
	assert.Equal(t, "no update requested", result.Update.Message)
}

func TestDataCenterService_QueryNameFilter(t *testing.T) {
	svc := NewDataCenterService()

	result := svc.Query(DataQuery{Value: 100, FieldName: "field_1", PageSize: 100})
	// field_1, field_10..field_19, field_100
	assert.Equal(t, 12, result.Total)
	for _, item := range result.Items {
		assert.Contains(t, item.Name, "field_1")
	}
}

func TestDataCenterService_QuerySortsCurrentPageOnly(t *testing.T) {
	svc := NewDataCenterService()

	result := svc.Query(DataQuery{Value: 50, Page: 2, PageSize: 10, SortField: "id", SortOrder: "desc"})
	assert.Len(t, result.Items, 10)
	// The page still holds records 11..20, sorted descending within itself.
	assert.Equal(t, 20, result.Items[0].ID)
	assert.Equal(t, 11, result.Items[9].ID)
}

func TestDataCenterService_QueryUpdateApplied(t *testing.T) {
	svc := NewDataCenterService()

	result := svc.Query(DataQuery{
		Value:    20,
		PageSize: 20,
		Update:   &DataFieldUpdate{ID: 3, Name: "renamed_field", Value: "fresh"},
	})

	assert.True(t, result.Update.Updated)
	assert.Equal(t, 3, result.Update.UpdatedID)
	assert.NotNil(t, result.Update.UpdatedItem)
	assert.Equal(t, "renamed_field", result.Update.UpdatedItem.Name)
	assert.Equal(t, "renamed_field", result.Items[2].Name)
	assert.NotEmpty(t, result.Update.Time)
}

func TestDataCenterService_QueryUpdateUnknownID(t *testing.T) {
	svc := NewDataCenterService()

	result := svc.Query(DataQuery{
		Value:  5,
		Update: &DataFieldUpdate{ID: 99, Name: "nope"},
	})
	assert.False(t, result.Update.Updated)
	assert.Equal(t, 99, result.Update.UpdatedID)
}

func TestDataCenterService_Devices(t *testing.T) {
	svc := NewDataCenterService()

	devices := svc.Devices(15)
	assert.Len(t, devices, 15)
	assert.Equal(t, "DEV-1001", devices[0].ID)
	assert.Equal(t, "192.168.0.1", devices[0].IP)

	for _, d := range devices {
		assert.Contains(t, []string{"normal", "warning", "offline"}, d.Status)
		assert.GreaterOrEqual(t, d.Temperature, 65)
		assert.LessOrEqual(t, d.Temperature, 95)
	}

	assert.Len(t, svc.Devices(5000), 1000, "clamped to the fleet size")
	assert.Empty(t, svc.Devices(-1))
}

func TestDataCenterService_Activities(t *testing.T) {
	svc := NewDataCenterService()

	acts := svc.Activities(4)
	assert.Len(t, acts, 4)
	assert.Equal(t, 1, acts[0].ID)
	assert.Equal(t, "User 1 published a new article", acts[0].Content)
	assert.Equal(t, "User 2 published a new article", acts[1].Content)
	assert.Equal(t, "2021-08-01 10:00:00", acts[0].Time)
	assert.Equal(t, "2021-08-01 13:00:00", acts[3].Time)
}
