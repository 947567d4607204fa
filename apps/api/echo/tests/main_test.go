package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/madrasa/apps/api/echo"
	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/approval"
	"github.com/trezcool/madrasa/core/booking"
	"github.com/trezcool/madrasa/core/bundle"
	"github.com/trezcool/madrasa/core/course"
	"github.com/trezcool/madrasa/core/opinion"
	"github.com/trezcool/madrasa/core/user"
	emailsvc "github.com/trezcool/madrasa/services/email"
	logsvc "github.com/trezcool/madrasa/services/logger"
	dummydb "github.com/trezcool/madrasa/storage/database/dummy"
)

var (
	db         *dummydb.DB
	app        Server
	conf       *core.Config
	usrRepo    user.Repository
	apprRepo   approval.Repository
	apptRepo   booking.Repository
	bundleRepo bundle.Repository
	courseRepo course.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	conf = core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.ContactPhoneNumber = "+243 123 456 789"

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)
	logger.Enable(false)

	// set up DB & repos
	db, _ = dummydb.Open()
	usrRepo = dummydb.NewUserRepository(db)
	apprRepo = dummydb.NewApprovalRepository(db)
	apptRepo = dummydb.NewAppointmentRepository(db)
	bundleRepo = dummydb.NewBundleRepository(db)
	courseRepo = dummydb.NewCourseRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc, conf)
	approvalSvc := approval.NewService(apprRepo, usrRepo, mailSvc, conf)
	bookingSvc := booking.NewService(apptRepo, usrRepo, mailSvc, conf)
	bundleSvc := bundle.NewService(bundleRepo, usrRepo, apptRepo, conf)
	courseSvc := course.NewService(courseRepo, usrRepo, conf)
	opinionSvc := opinion.NewService(dummydb.NewOpinionRepository(db))

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(logger, conf)

	// set up server
	app = NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         logger,
			UserSvc:        usrSvc,
			ApprovalSvc:    approvalSvc,
			BookingSvc:     bookingSvc,
			BundleSvc:      bundleSvc,
			CourseSvc:      courseSvc,
			OpinionSvc:     opinionSvc,
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,
		},
	)

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
