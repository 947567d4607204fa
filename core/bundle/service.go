package bundle

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/booking"
	"github.com/trezcool/madrasa/core/user"
	wasvc "github.com/trezcool/madrasa/services/whatsapp"
)

var (
	// errors
	ErrPackageNotFound  = errors.New("package not found")
	ErrPurchaseNotFound = errors.New("purchase not found")

	// WhatsApp order message (Arabic, opened by the student; there is no in-app payment)
	orderMsg = "مرحباً، أود شراء باقة \"%s\" (%v ساعة) بسعر %v₪.\nالاسم: %s\nالبريد الإلكتروني: %s"
)

type (
	Repository interface {
		// packages
		CreatePackage(ctx context.Context, pkg Package) (Package, error)
		QueryPackages(ctx context.Context, ordering []core.DBOrdering) ([]Package, error)
		GetPackage(ctx context.Context, id string) (Package, error)
		UpdatePackage(ctx context.Context, pkg Package) (Package, error)
		DeletePackagesByID(ctx context.Context, ids ...string) (int, error)

		// purchases
		CreatePurchase(ctx context.Context, pur Purchase) (Purchase, error)
		// QueryPurchases applies AND operation on available PurchaseFilter fields.
		QueryPurchases(ctx context.Context, filter *PurchaseFilter, ordering []core.DBOrdering) ([]Purchase, error)
		GetPurchase(ctx context.Context, id string) (Purchase, error)
		UpdatePurchase(ctx context.Context, pur Purchase) (Purchase, error)
		UpdateOrCreatePurchase(ctx context.Context, pur Purchase) (Purchase, error)
		DeletePurchasesByID(ctx context.Context, ids ...string) (int, error)
	}

	Service interface {
		// catalog
		CreatePackage(ctx context.Context, np NewPackage) (Package, error)
		QueryPackages(ctx context.Context, includeInactive bool) ([]Package, error)
		GetPackage(ctx context.Context, id string) (Package, error)
		UpdatePackage(ctx context.Context, id string, up UpdatePackage) (Package, error)
		DeletePackages(ctx context.Context, ids ...string) error
		OrderLink(pkg Package, student user.User) string

		// purchases
		CreatePurchase(ctx context.Context, np NewPurchase) (Purchase, error)
		ImportPurchase(ctx context.Context, lp LegacyPurchase) (Purchase, error)
		QueryPurchases(ctx context.Context, filter *PurchaseFilter) ([]Purchase, error)
		QueryStudentPurchases(ctx context.Context, student user.User) ([]Purchase, error)
		UpdatePurchase(ctx context.Context, id string, up UpdatePurchase) (Purchase, error)
		DeletePurchases(ctx context.Context, ids ...string) error

		// dashboards
		StudentSummary(ctx context.Context, student user.User) (Summary, error)
		Overview(ctx context.Context) ([]OverviewRow, error)
	}

	service struct {
		repo     Repository
		usrRepo  user.Repository
		apptRepo booking.Repository
		conf     *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository, apptRepo booking.Repository, conf *core.Config) Service {
	return &service{
		repo:     repo,
		usrRepo:  usrRepo,
		apptRepo: apptRepo,
		conf:     conf,
	}
}

// Catalog

func (svc *service) CreatePackage(ctx context.Context, np NewPackage) (Package, error) {
	now := time.Now().UTC()
	pkg := Package{
		Title:     np.Title,
		Hours:     np.Hours,
		Price:     np.Price,
		Category:  np.Category,
		Active:    np.Active,
		ImageURL:  np.ImageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreatePackage(ctx, pkg)
}

// QueryPackages lists the catalog ordered by hours; students only see
// active packages.
func (svc *service) QueryPackages(ctx context.Context, includeInactive bool) ([]Package, error) {
	pkgs, err := svc.repo.QueryPackages(ctx, []core.DBOrdering{{Field: "hours", Ascending: true}})
	if err != nil {
		return nil, err
	}
	if includeInactive {
		return pkgs, nil
	}
	active := make([]Package, 0, len(pkgs))
	for i := range pkgs {
		if pkgs[i].IsActive() {
			active = append(active, pkgs[i])
		}
	}
	return active, nil
}

func (svc *service) GetPackage(ctx context.Context, id string) (Package, error) {
	return svc.repo.GetPackage(ctx, id)
}

func (svc *service) UpdatePackage(ctx context.Context, id string, up UpdatePackage) (Package, error) {
	pkg, err := svc.repo.GetPackage(ctx, id)
	if err != nil {
		return Package{}, err
	}
	if up.Title != "" {
		pkg.Title = up.Title
	}
	if up.Hours != 0 {
		pkg.Hours = up.Hours
	}
	if up.Price != 0 {
		pkg.Price = up.Price
	}
	if up.Category != "" {
		pkg.Category = up.Category
	}
	if up.Active != nil {
		pkg.Active = up.Active
	}
	if up.ImageURL != "" {
		pkg.ImageURL = up.ImageURL
	}
	pkg.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdatePackage(ctx, pkg)
}

func (svc *service) DeletePackages(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeletePackagesByID(ctx, ids...)
	return err
}

// OrderLink builds the WhatsApp deep link a student opens to order a package.
func (svc *service) OrderLink(pkg Package, student user.User) string {
	text := fmt.Sprintf(orderMsg, pkg.Title, pkg.Hours, pkg.Price, student.FullName(), student.Email)
	return wasvc.Link(svc.conf.ContactPhoneNumber, text)
}

// Purchases

func (svc *service) CreatePurchase(ctx context.Context, np NewPurchase) (Purchase, error) {
	now := time.Now().UTC()
	pur := Purchase{
		StudentID:    np.StudentID,
		StudentEmail: np.StudentEmail,
		Title:        np.Title,
		Hours:        np.Hours,
		HoursUsed:    np.HoursUsed,
		Price:        np.Price,
		Category:     np.Category,
		Active:       np.Active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreatePurchase(ctx, pur)
}

// ImportPurchase upserts a normalized legacy row, keeping its original id so
// re-imports stay idempotent.
func (svc *service) ImportPurchase(ctx context.Context, lp LegacyPurchase) (Purchase, error) {
	return svc.repo.UpdateOrCreatePurchase(ctx, lp.Normalize())
}

func (svc *service) QueryPurchases(ctx context.Context, filter *PurchaseFilter) ([]Purchase, error) {
	return svc.repo.QueryPurchases(ctx, filter, []core.DBOrdering{{Field: "created_at", Ascending: false}})
}

// QueryStudentPurchases fetches the student's purchases by id and again by
// email (legacy rows only carry the email), merged duplicate-safe by id.
func (svc *service) QueryStudentPurchases(ctx context.Context, student user.User) ([]Purchase, error) {
	byID, err := svc.repo.QueryPurchases(ctx, &PurchaseFilter{StudentID: student.ID}, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying purchases by student id")
	}
	byEmail, err := svc.repo.QueryPurchases(ctx, &PurchaseFilter{StudentEmail: student.Email}, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying purchases by student email")
	}
	return MergeByID(byID, byEmail), nil
}

func (svc *service) UpdatePurchase(ctx context.Context, id string, up UpdatePurchase) (Purchase, error) {
	pur, err := svc.repo.GetPurchase(ctx, id)
	if err != nil {
		return Purchase{}, err
	}
	if up.Title != "" {
		pur.Title = up.Title
	}
	if up.Hours != nil {
		pur.Hours = *up.Hours
	}
	if up.HoursUsed != nil {
		pur.HoursUsed = *up.HoursUsed
	}
	if up.Price != nil {
		pur.Price = *up.Price
	}
	if up.Category != "" {
		pur.Category = up.Category
	}
	if up.Active != nil {
		pur.Active = up.Active
	}
	pur.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdatePurchase(ctx, pur)
}

func (svc *service) DeletePurchases(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeletePurchasesByID(ctx, ids...)
	return err
}

// Dashboards

func (svc *service) StudentSummary(ctx context.Context, student user.User) (Summary, error) {
	purchases, err := svc.QueryStudentPurchases(ctx, student)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(purchases), nil
}

func (svc *service) Overview(ctx context.Context) ([]OverviewRow, error) {
	students, err := svc.usrRepo.QueryUsers(ctx, &user.QueryFilter{Role: user.RoleStudent}, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying students")
	}
	purchases, err := svc.repo.QueryPurchases(ctx, nil, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying purchases")
	}
	appointments, err := svc.apptRepo.QueryAppointments(ctx, nil, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying appointments")
	}
	return BuildOverview(students, purchases, appointments, time.Now().UTC()), nil
}
