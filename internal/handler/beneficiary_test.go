package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"aidtrack/internal/config"
	"aidtrack/internal/database"
	"aidtrack/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// TestSaveDistrictEntries_FirstSubmission covers the first save for a
// district: a fresh application number, line totals, and the remaining
// budget against the district's allotment.
func TestSaveDistrictEntries_FirstSubmission(t *testing.T) {
	// 1. init test database with a district and two articles
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	user := createTestUser(t, db, "operator1")
	district := models.District{Name: "Chennai", AllottedBudget: mustDec("100000")}
	db.Create(&district)
	rice := models.Article{Name: "Rice Bag", CostPerUnit: mustDec("1000"), ItemType: models.ItemTypeAid, IsActive: true}
	cement := models.Article{Name: "Cement", CostPerUnit: mustDec("5000"), ItemType: models.ItemTypeAid, IsActive: true}
	db.Create(&rice)
	db.Create(&cement)

	r := newTestRouter(user)
	h := NewBeneficiaryHandler(db, nil)
	r.POST("/api/beneficiaries/district", h.SaveDistrictEntries)

	// 2. submit two lines: 2 × 1000 and 1 × 5000
	body := map[string]interface{}{
		"district_id": district.ID,
		"lines": []map[string]interface{}{
			{"article_id": rice.ID, "quantity": 2, "cost_per_unit": "1000"},
			{"article_id": cement.ID, "quantity": 1, "cost_per_unit": "5000"},
		},
	}
	w := performJSON(t, r, http.MethodPost, "/api/beneficiaries/district", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code int `json:"code"`
		Data struct {
			ApplicationNumber string          `json:"application_number"`
			TotalAccrued      decimal.Decimal `json:"total_accrued"`
			Remaining         decimal.Decimal `json:"remaining"`
			OverBudget        bool            `json:"over_budget"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// 3. verify number, total and remaining budget
	if resp.Data.ApplicationNumber != "DST-00001" {
		t.Errorf("application_number = %s, want DST-00001", resp.Data.ApplicationNumber)
	}
	if !resp.Data.TotalAccrued.Equal(mustDec("7000")) {
		t.Errorf("total_accrued = %s, want 7000", resp.Data.TotalAccrued)
	}
	if !resp.Data.Remaining.Equal(mustDec("93000")) {
		t.Errorf("remaining = %s, want 93000", resp.Data.Remaining)
	}
	if resp.Data.OverBudget {
		t.Error("over_budget = true for a submission inside the allotment")
	}

	// 4. the number is persisted onto the district for later reuse
	var saved models.District
	db.First(&saved, district.ID)
	if saved.ApplicationNumber != "DST-00001" {
		t.Errorf("district.application_number = %s, want DST-00001", saved.ApplicationNumber)
	}

	var count int64
	db.Model(&models.DistrictEntry{}).Where("application_number = ?", "DST-00001").Count(&count)
	if count != 2 {
		t.Errorf("stored %d entry rows, want 2", count)
	}
}

// TestSaveDistrictEntries_ResaveReplaces covers the repeat submission for the
// same district: the anchored number is reused, the old rows are replaced
// rather than appended, and the remaining budget reflects only the new rows.
func TestSaveDistrictEntries_ResaveReplaces(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	user := createTestUser(t, db, "operator1")
	district := models.District{Name: "Madurai", AllottedBudget: mustDec("100000")}
	db.Create(&district)
	rice := models.Article{Name: "Rice Bag", CostPerUnit: mustDec("1000"), ItemType: models.ItemTypeAid, IsActive: true}
	db.Create(&rice)

	r := newTestRouter(user)
	h := NewBeneficiaryHandler(db, nil)
	r.POST("/api/beneficiaries/district", h.SaveDistrictEntries)

	// 1. first save: 7 × 1000
	first := map[string]interface{}{
		"district_id": district.ID,
		"lines": []map[string]interface{}{
			{"article_id": rice.ID, "quantity": 7, "cost_per_unit": "1000"},
		},
	}
	w := performJSON(t, r, http.MethodPost, "/api/beneficiaries/district", first)
	if w.Code != http.StatusOK {
		t.Fatalf("first save status = %d, body = %s", w.Code, w.Body.String())
	}

	// 2. resave with a single 1 × 1000 line, no application_number sent:
	// the district anchor supplies it
	second := map[string]interface{}{
		"district_id": district.ID,
		"lines": []map[string]interface{}{
			{"article_id": rice.ID, "quantity": 1, "cost_per_unit": "1000"},
		},
	}
	w = performJSON(t, r, http.MethodPost, "/api/beneficiaries/district", second)
	if w.Code != http.StatusOK {
		t.Fatalf("second save status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code int `json:"code"`
		Data struct {
			ApplicationNumber string          `json:"application_number"`
			Remaining         decimal.Decimal `json:"remaining"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// 3. same number, replaced rows, remaining computed from the new rows only
	if resp.Data.ApplicationNumber != "DST-00001" {
		t.Errorf("resave number = %s, want DST-00001 reused", resp.Data.ApplicationNumber)
	}
	if !resp.Data.Remaining.Equal(mustDec("99000")) {
		t.Errorf("remaining = %s, want 99000 (old rows replaced)", resp.Data.Remaining)
	}

	var count int64
	db.Model(&models.DistrictEntry{}).Where("district_id = ?", district.ID).Count(&count)
	if count != 1 {
		t.Errorf("stored %d entry rows after replace, want 1", count)
	}

	// 4. the replace is audited with the removed rows
	var logCount int64
	db.Model(&models.AuditLog{}).Where("action = ?", "district_entries.replace").Count(&logCount)
	if logCount != 1 {
		t.Errorf("found %d replace audit rows, want 1", logCount)
	}

	// 5. the reuse did not burn a sequence number
	var seq models.Sequence
	db.Where("type = ?", models.BeneficiaryDistrict).First(&seq)
	if seq.LastValue != 1 {
		t.Errorf("district sequence = %d after reuse, want 1", seq.LastValue)
	}
}

// TestSaveDistrictEntries_OverBudgetWarns verifies an allotment overrun is a
// warning on the response, never a rejection.
func TestSaveDistrictEntries_OverBudgetWarns(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	user := createTestUser(t, db, "operator1")
	district := models.District{Name: "Salem", AllottedBudget: mustDec("5000")}
	db.Create(&district)
	cement := models.Article{Name: "Cement", CostPerUnit: mustDec("5000"), ItemType: models.ItemTypeAid, IsActive: true}
	db.Create(&cement)

	r := newTestRouter(user)
	h := NewBeneficiaryHandler(db, nil)
	r.POST("/api/beneficiaries/district", h.SaveDistrictEntries)

	body := map[string]interface{}{
		"district_id": district.ID,
		"lines": []map[string]interface{}{
			{"article_id": cement.ID, "quantity": 2, "cost_per_unit": "5000"},
		},
	}
	w := performJSON(t, r, http.MethodPost, "/api/beneficiaries/district", body)
	if w.Code != http.StatusOK {
		t.Fatalf("over-budget save was rejected: %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Remaining  decimal.Decimal `json:"remaining"`
			OverBudget bool            `json:"over_budget"`
			Warning    string          `json:"warning"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Data.Remaining.Equal(mustDec("-5000")) {
		t.Errorf("remaining = %s, want -5000", resp.Data.Remaining)
	}
	if !resp.Data.OverBudget || resp.Data.Warning == "" {
		t.Errorf("over_budget = %v, warning = %q; want a flagged warning", resp.Data.OverBudget, resp.Data.Warning)
	}
}

// TestSaveDistrictEntries_ValidationCollectsAll verifies every line problem
// comes back in one response.
func TestSaveDistrictEntries_ValidationCollectsAll(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	user := createTestUser(t, db, "operator1")
	district := models.District{Name: "Erode", AllottedBudget: mustDec("1000")}
	db.Create(&district)

	r := newTestRouter(user)
	h := NewBeneficiaryHandler(db, nil)
	r.POST("/api/beneficiaries/district", h.SaveDistrictEntries)

	body := map[string]interface{}{
		"district_id": district.ID,
		"lines": []map[string]interface{}{
			{"article_id": 0, "quantity": 0, "cost_per_unit": "0"},
		},
	}
	w := performJSON(t, r, http.MethodPost, "/api/beneficiaries/district", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp struct {
		Code   int               `json:"code"`
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, f := range []string{"lines[0].article_id", "lines[0].quantity", "lines[0].cost_per_unit"} {
		if _, ok := resp.Errors[f]; !ok {
			t.Errorf("missing error for %s; got %v", f, resp.Errors)
		}
	}
}

// TestSavePublicEntry_AadhaarConflict covers the duplicate-applicant flow:
// the second submission with the same Aadhaar number is reported as a
// conflict, and resolving with update-existing replaces the record under the
// original application number.
func TestSavePublicEntry_AadhaarConflict(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	user := createTestUser(t, db, "operator1")
	pump := models.Article{Name: "Water Pump", CostPerUnit: mustDec("3000"), ItemType: models.ItemTypeAid, IsActive: true}
	db.Create(&pump)

	r := newTestRouter(user)
	h := NewBeneficiaryHandler(db, nil)
	r.POST("/api/beneficiaries/public", h.SavePublicEntry)

	// 1. first applicant gets PUB-00001
	first := map[string]interface{}{
		"applicant_name": "Ravi Kumar",
		"aadhar_number":  "1234 5678 9012",
		"article_id":     pump.ID,
		"quantity":       1,
		"cost_per_unit":  "3000",
	}
	w := performJSON(t, r, http.MethodPost, "/api/beneficiaries/public", first)
	if w.Code != http.StatusOK {
		t.Fatalf("first save status = %d, body = %s", w.Code, w.Body.String())
	}

	// 2. a second submission with the same Aadhaar (different formatting)
	// is a conflict, not a silent second number
	second := map[string]interface{}{
		"applicant_name": "R. Kumar",
		"aadhar_number":  "1234-5678-9012",
		"article_id":     pump.ID,
		"quantity":       2,
		"cost_per_unit":  "3000",
	}
	w = performJSON(t, r, http.MethodPost, "/api/beneficiaries/public", second)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409; body = %s", w.Code, w.Body.String())
	}

	var conflict struct {
		Code    int      `json:"code"`
		Choices []string `json:"choices"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &conflict); err != nil {
		t.Fatalf("decode conflict: %v", err)
	}
	if conflict.Code != 40901 {
		t.Errorf("conflict code = %d, want 40901", conflict.Code)
	}
	if len(conflict.Choices) == 0 {
		t.Error("conflict offered no choices")
	}

	// 3. resolving with update-existing replaces under PUB-00001
	second["resolution"] = "update-existing"
	w = performJSON(t, r, http.MethodPost, "/api/beneficiaries/public", second)
	if w.Code != http.StatusOK {
		t.Fatalf("resolved save status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			ApplicationNumber string `json:"application_number"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.ApplicationNumber != "PUB-00001" {
		t.Errorf("resolved number = %s, want PUB-00001 reused", resp.Data.ApplicationNumber)
	}

	// 4. exactly one record remains, carrying the updated details
	var rows []models.PublicEntry
	db.Find(&rows)
	if len(rows) != 1 {
		t.Fatalf("stored %d applicant rows, want 1", len(rows))
	}
	if rows[0].ApplicantName != "R. Kumar" || rows[0].Quantity != 2 {
		t.Errorf("record not updated: %+v", rows[0])
	}
	if rows[0].AadharNumber != "123456789012" {
		t.Errorf("aadhar stored as %q, want digits only", rows[0].AadharNumber)
	}
}

// TestSaveInstitutionEntries_AnchorsOnName verifies a repeat submission for
// the same institution (case-insensitive) reuses its application number.
func TestSaveInstitutionEntries_AnchorsOnName(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	user := createTestUser(t, db, "operator1")
	desk := models.Article{Name: "Desk", CostPerUnit: mustDec("2500"), ItemType: models.ItemTypeAid, IsActive: true}
	db.Create(&desk)

	r := newTestRouter(user)
	h := NewBeneficiaryHandler(db, nil)
	r.POST("/api/beneficiaries/institution", h.SaveInstitutionEntries)

	first := map[string]interface{}{
		"institution_name": "Govt High School",
		"lines": []map[string]interface{}{
			{"article_id": desk.ID, "quantity": 10, "cost_per_unit": "2500"},
		},
	}
	w := performJSON(t, r, http.MethodPost, "/api/beneficiaries/institution", first)
	if w.Code != http.StatusOK {
		t.Fatalf("first save status = %d, body = %s", w.Code, w.Body.String())
	}

	second := map[string]interface{}{
		"institution_name": "GOVT HIGH SCHOOL",
		"lines": []map[string]interface{}{
			{"article_id": desk.ID, "quantity": 4, "cost_per_unit": "2500"},
		},
	}
	w = performJSON(t, r, http.MethodPost, "/api/beneficiaries/institution", second)
	if w.Code != http.StatusOK {
		t.Fatalf("second save status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			ApplicationNumber string `json:"application_number"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.ApplicationNumber != "INS-00001" {
		t.Errorf("resave number = %s, want INS-00001 reused", resp.Data.ApplicationNumber)
	}

	var count int64
	db.Model(&models.InstitutionEntry{}).Count(&count)
	if count != 1 {
		t.Errorf("stored %d rows after replace, want 1", count)
	}
}

// TestSaveDistrictEntries_RejectsForeignNumber verifies an edit may only name
// the district's own application number; naming another district's number is
// rejected and that district's rows stay untouched.
func TestSaveDistrictEntries_RejectsForeignNumber(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	user := createTestUser(t, db, "operator1")
	chennai := models.District{Name: "Chennai", AllottedBudget: mustDec("100000")}
	madurai := models.District{Name: "Madurai", AllottedBudget: mustDec("100000")}
	db.Create(&chennai)
	db.Create(&madurai)
	rice := models.Article{Name: "Rice Bag", CostPerUnit: mustDec("1000"), ItemType: models.ItemTypeAid, IsActive: true}
	db.Create(&rice)

	r := newTestRouter(user)
	h := NewBeneficiaryHandler(db, nil)
	r.POST("/api/beneficiaries/district", h.SaveDistrictEntries)

	// 1. Chennai's first save issues DST-00001
	first := map[string]interface{}{
		"district_id": chennai.ID,
		"lines": []map[string]interface{}{
			{"article_id": rice.ID, "quantity": 5, "cost_per_unit": "1000"},
		},
	}
	w := performJSON(t, r, http.MethodPost, "/api/beneficiaries/district", first)
	if w.Code != http.StatusOK {
		t.Fatalf("first save status = %d, body = %s", w.Code, w.Body.String())
	}

	// 2. a Madurai submission naming Chennai's number is rejected
	hijack := map[string]interface{}{
		"district_id":        madurai.ID,
		"application_number": "DST-00001",
		"lines": []map[string]interface{}{
			{"article_id": rice.ID, "quantity": 1, "cost_per_unit": "1000"},
		},
	}
	w = performJSON(t, r, http.MethodPost, "/api/beneficiaries/district", hijack)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("hijack status = %d, want 400; body = %s", w.Code, w.Body.String())
	}

	// 3. Chennai's rows survive intact
	var rows []models.DistrictEntry
	db.Where("application_number = ?", "DST-00001").Find(&rows)
	if len(rows) != 1 || rows[0].DistrictID != chennai.ID || rows[0].Quantity != 5 {
		t.Errorf("rows under DST-00001 = %+v, want Chennai's original line", rows)
	}
}

// TestSavePublicEntry_RejectsUnknownNumber verifies an edit must name an
// existing applicant; an unknown number is a 404, not a silent insert.
func TestSavePublicEntry_RejectsUnknownNumber(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	user := createTestUser(t, db, "operator1")
	pump := models.Article{Name: "Water Pump", CostPerUnit: mustDec("3000"), ItemType: models.ItemTypeAid, IsActive: true}
	db.Create(&pump)

	r := newTestRouter(user)
	h := NewBeneficiaryHandler(db, nil)
	r.POST("/api/beneficiaries/public", h.SavePublicEntry)

	body := map[string]interface{}{
		"application_number": "PUB-00042",
		"applicant_name":     "Ravi Kumar",
		"aadhar_number":      "123456789012",
		"article_id":         pump.ID,
		"quantity":           1,
		"cost_per_unit":      "3000",
	}
	w := performJSON(t, r, http.MethodPost, "/api/beneficiaries/public", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body = %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.PublicEntry{}).Count(&count)
	if count != 0 {
		t.Errorf("stored %d applicant rows, want 0", count)
	}
}

// TestSaveInstitutionEntries_RejectsUnknownNumber mirrors the applicant case
// for institutions.
func TestSaveInstitutionEntries_RejectsUnknownNumber(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	user := createTestUser(t, db, "operator1")
	desk := models.Article{Name: "Desk", CostPerUnit: mustDec("2500"), ItemType: models.ItemTypeAid, IsActive: true}
	db.Create(&desk)

	r := newTestRouter(user)
	h := NewBeneficiaryHandler(db, nil)
	r.POST("/api/beneficiaries/institution", h.SaveInstitutionEntries)

	body := map[string]interface{}{
		"institution_name":   "Govt High School",
		"application_number": "INS-00042",
		"lines": []map[string]interface{}{
			{"article_id": desk.ID, "quantity": 1, "cost_per_unit": "2500"},
		},
	}
	w := performJSON(t, r, http.MethodPost, "/api/beneficiaries/institution", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body = %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.InstitutionEntry{}).Count(&count)
	if count != 0 {
		t.Errorf("stored %d institution rows, want 0", count)
	}
}

// ==================== helpers ====================

// setupTestDB creates a temp-file SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	testDBPath := filepath.Join(t.TempDir(), "test_handler.db")

	db, err := database.Init(config.DatabaseConfig{Path: testDBPath, LogMode: false})
	if err != nil {
		t.Fatalf("Init test database failed: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	return db
}

// cleanupTestDB closes the connection so t.TempDir can remove the files.
func cleanupTestDB(t *testing.T, db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
		time.Sleep(50 * time.Millisecond) // let WAL files release
	}
}

// createTestUser inserts a staff account and returns it.
func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	user := models.User{
		Username:     username,
		PasswordHash: "x", // handlers under test never check the password
		DisplayName:  username,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create test user failed: %v", err)
	}
	return &user
}

// newTestRouter returns an engine with the given user pre-authenticated.
func newTestRouter(user *models.User) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("currentUser", user)
		c.Next()
	})
	return r
}

// performJSON runs one JSON request through the engine.
func performJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// mustDec parses a decimal literal.
func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
