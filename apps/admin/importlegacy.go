package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/bundle"
	"github.com/trezcool/madrasa/core/course"
)

// legacyEnrollment mirrors the loosely-typed enrollment rows of the historic
// store; older rows only carry the student's email.
type legacyEnrollment struct {
	CourseID     string    `json:"courseId"`
	StudentID    string    `json:"studentId"`
	StudentEmail string    `json:"studentEmail"`
	Status       string    `json:"status"`
	GrantedAt    time.Time `json:"grantedAt"`
}

// importLegacy loads JSON dumps of the historic store. Re-running an import is
// safe: purchases keep their original ids and enrollments upsert on the
// composite id.
func (cli *commandLine) importLegacy(purchasesPath, enrollmentsPath string) error {
	ctx := context.Background()

	if purchasesPath != "" {
		n, err := cli.importPurchases(ctx, purchasesPath)
		if err != nil {
			return errors.Wrap(err, "importing purchases")
		}
		logger.Printf("imported %d purchases\n", n)
	}

	if enrollmentsPath != "" {
		n, err := cli.importEnrollments(ctx, enrollmentsPath)
		if err != nil {
			return errors.Wrap(err, "importing enrollments")
		}
		logger.Printf("imported %d enrollments\n", n)
	}
	return nil
}

func (cli *commandLine) importPurchases(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrap(err, "reading dump")
	}

	var dump []bundle.LegacyPurchase
	if err = json.Unmarshal(raw, &dump); err != nil {
		return 0, errors.Wrap(err, "decoding dump")
	}

	var n int
	for _, lp := range dump {
		if _, err = cli.bundleRepo.UpdateOrCreatePurchase(ctx, lp.Normalize()); err != nil {
			return n, errors.Wrapf(err, "upserting purchase %q", lp.ID)
		}
		n++
	}
	return n, nil
}

func (cli *commandLine) importEnrollments(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrap(err, "reading dump")
	}

	var dump []legacyEnrollment
	if err = json.Unmarshal(raw, &dump); err != nil {
		return 0, errors.Wrap(err, "decoding dump")
	}

	var n int
	for _, le := range dump {
		enr := course.Enrollment{
			CourseID:     core.CleanString(le.CourseID),
			StudentID:    core.CleanString(le.StudentID),
			StudentEmail: core.CleanString(le.StudentEmail, true /* lower */),
			Status:       core.CleanString(le.Status, true /* lower */),
			GrantedAt:    le.GrantedAt.UTC(),
			UpdatedAt:    le.GrantedAt.UTC(),
		}
		if enr.Status == "" {
			enr.Status = course.EnrollmentActive
		}
		// legacy rows without a student id stay keyed by email only
		if enr.StudentID != "" {
			enr.ID = course.EnrollmentID(enr.StudentID, enr.CourseID)
		} else {
			enr.ID = course.EnrollmentID(enr.StudentEmail, enr.CourseID)
		}
		if _, err = cli.courseRepo.UpsertEnrollment(ctx, enr); err != nil {
			return n, errors.Wrapf(err, "upserting enrollment %q", enr.ID)
		}
		n++
	}
	return n, nil
}
