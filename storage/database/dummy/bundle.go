package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/bundle"
)

type bundleRepository struct {
	packages  *packageTable
	purchases *purchaseTable
}

var _ bundle.Repository = (*bundleRepository)(nil) // interface compliance check

func NewBundleRepository(db *DB) bundle.Repository {
	return &bundleRepository{packages: db.pack, purchases: db.purchase}
}

func (repo *bundleRepository) CreatePackage(ctx context.Context, pkg bundle.Package) (bundle.Package, error) {
	repo.packages.Lock()
	defer repo.packages.Unlock()

	if pkg.ID == "" {
		pkg.ID = uuid.New().String()
	}
	repo.packages.table[pkg.ID] = &pkg
	return pkg, nil
}

func (repo *bundleRepository) QueryPackages(ctx context.Context, ordering []core.DBOrdering) ([]bundle.Package, error) {
	repo.packages.RLock()
	defer repo.packages.RUnlock()

	pkgs := make([]bundle.Package, 0, len(repo.packages.table))
	for _, pkg := range repo.packages.table {
		pkgs = append(pkgs, *pkg)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Hours < pkgs[j].Hours })
	return pkgs, nil
}

func (repo *bundleRepository) GetPackage(ctx context.Context, id string) (bundle.Package, error) {
	repo.packages.RLock()
	defer repo.packages.RUnlock()

	if pkg, ok := repo.packages.table[id]; ok {
		return *pkg, nil
	}
	return bundle.Package{}, bundle.ErrPackageNotFound
}

func (repo *bundleRepository) UpdatePackage(ctx context.Context, pkg bundle.Package) (bundle.Package, error) {
	repo.packages.Lock()
	defer repo.packages.Unlock()

	if _, ok := repo.packages.table[pkg.ID]; !ok {
		return bundle.Package{}, bundle.ErrPackageNotFound
	}
	repo.packages.table[pkg.ID] = &pkg
	return pkg, nil
}

func (repo *bundleRepository) DeletePackagesByID(ctx context.Context, ids ...string) (int, error) {
	repo.packages.Lock()
	defer repo.packages.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.packages.table[id]; ok {
			delete(repo.packages.table, id)
			n++
		}
	}
	return n, nil
}

func (repo *bundleRepository) CreatePurchase(ctx context.Context, pur bundle.Purchase) (bundle.Purchase, error) {
	repo.purchases.Lock()
	defer repo.purchases.Unlock()

	if pur.ID == "" {
		pur.ID = uuid.New().String()
	}
	repo.purchases.table[pur.ID] = &pur
	return pur, nil
}

func (repo *bundleRepository) QueryPurchases(ctx context.Context, filter *bundle.PurchaseFilter, ordering []core.DBOrdering) ([]bundle.Purchase, error) {
	repo.purchases.RLock()
	defer repo.purchases.RUnlock()

	purchases := make([]bundle.Purchase, 0, len(repo.purchases.table))
	for _, pur := range repo.purchases.table {
		if filter != nil {
			if filter.StudentID != "" && pur.StudentID != filter.StudentID {
				continue
			}
			if filter.StudentEmail != "" && pur.StudentEmail != filter.StudentEmail {
				continue
			}
		}
		purchases = append(purchases, *pur)
	}

	sort.Slice(purchases, func(i, j int) bool { return purchases[i].CreatedAt.After(purchases[j].CreatedAt) })
	return purchases, nil
}

func (repo *bundleRepository) GetPurchase(ctx context.Context, id string) (bundle.Purchase, error) {
	repo.purchases.RLock()
	defer repo.purchases.RUnlock()

	if pur, ok := repo.purchases.table[id]; ok {
		return *pur, nil
	}
	return bundle.Purchase{}, bundle.ErrPurchaseNotFound
}

func (repo *bundleRepository) UpdatePurchase(ctx context.Context, pur bundle.Purchase) (bundle.Purchase, error) {
	repo.purchases.Lock()
	defer repo.purchases.Unlock()

	if _, ok := repo.purchases.table[pur.ID]; !ok {
		return bundle.Purchase{}, bundle.ErrPurchaseNotFound
	}
	repo.purchases.table[pur.ID] = &pur
	return pur, nil
}

func (repo *bundleRepository) UpdateOrCreatePurchase(ctx context.Context, pur bundle.Purchase) (bundle.Purchase, error) {
	repo.purchases.Lock()
	defer repo.purchases.Unlock()

	if pur.ID == "" {
		pur.ID = uuid.New().String()
	}
	repo.purchases.table[pur.ID] = &pur
	return pur, nil
}

func (repo *bundleRepository) DeletePurchasesByID(ctx context.Context, ids ...string) (int, error) {
	repo.purchases.Lock()
	defer repo.purchases.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.purchases.table[id]; ok {
			delete(repo.purchases.table, id)
			n++
		}
	}
	return n, nil
}
