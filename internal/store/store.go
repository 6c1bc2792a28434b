// Package store persists the warranty business records as flat CSV tables,
// one file per table with a header row. Every mutation is a full
// load-filter-rewrite of the affected table; writes go through a temp file
// and an atomic rename so a crash never leaves a half-written table behind.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	vehiclesFile       = "vehicles.csv"
	warrantiesFile     = "warranties.csv"
	customersFile      = "customers.csv"
	ccpPackagesFile    = "ccp_packages.csv"
	claimsFile         = "claims.csv"
	serviceCentersFile = "service_centers.csv"
	appointmentsFile   = "appointments.csv"
)

// Store reads and writes the CSV tables under a single data directory.
// Callers performing a read-modify-write sequence (identifier generation,
// slot booking) must hold the store lock across the whole sequence so two
// concurrent tool calls cannot both observe the same max ID or free slot.
type Store struct {
	mu  sync.Mutex
	dir string
}

// Open returns a store rooted at dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Lock takes the single-writer lock for a read-modify-write sequence.
func (s *Store) Lock() { s.mu.Lock() }

// Unlock releases the single-writer lock.
func (s *Store) Unlock() { s.mu.Unlock() }

// readRows loads a table into header-keyed rows. A missing file is an empty
// table, not an error.
func (s *Store) readRows(file string) ([]row, error) {
	f, err := os.Open(filepath.Join(s.dir, file))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	rows := make([]row, 0, len(records)-1)
	for _, rec := range records[1:] {
		m := make(row, len(header))
		for i, col := range header {
			if i < len(rec) {
				m[col] = rec[i]
			}
		}
		rows = append(rows, m)
	}
	return rows, nil
}

// writeRows rewrites a table in full. The temp file lands in the same
// directory so the final rename stays on one filesystem.
func (s *Store) writeRows(file string, header []string, rows []row) error {
	tmp, err := os.CreateTemp(s.dir, file+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", file, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s header: %w", file, err)
	}
	for _, r := range rows {
		rec := make([]string, len(header))
		for i, col := range header {
			rec[i] = r[col]
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("write %s row: %w", file, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush %s: %w", file, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %s: %w", file, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, file)); err != nil {
		return fmt.Errorf("replace %s: %w", file, err)
	}
	return nil
}

func loadTable[T any](s *Store, file string, from func(row) T) ([]T, error) {
	rows, err := s.readRows(file)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, from(r))
	}
	return out, nil
}

func saveTable[T any](s *Store, file string, header []string, recs []T, to func(T) row) error {
	rows := make([]row, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, to(rec))
	}
	return s.writeRows(file, header, rows)
}

// Vehicles loads the vehicles table.
func (s *Store) Vehicles() ([]Vehicle, error) {
	return loadTable(s, vehiclesFile, vehicleFromRow)
}

// SaveVehicles rewrites the vehicles table.
func (s *Store) SaveVehicles(vs []Vehicle) error {
	return saveTable(s, vehiclesFile, vehicleHeader, vs, Vehicle.toRow)
}

// Warranties loads the warranties table.
func (s *Store) Warranties() ([]Warranty, error) {
	return loadTable(s, warrantiesFile, warrantyFromRow)
}

// SaveWarranties rewrites the warranties table.
func (s *Store) SaveWarranties(ws []Warranty) error {
	return saveTable(s, warrantiesFile, warrantyHeader, ws, Warranty.toRow)
}

// Claims loads the claims table.
func (s *Store) Claims() ([]Claim, error) {
	return loadTable(s, claimsFile, claimFromRow)
}

// SaveClaims rewrites the claims table.
func (s *Store) SaveClaims(cs []Claim) error {
	return saveTable(s, claimsFile, claimHeader, cs, Claim.toRow)
}

// Appointments loads the appointments table.
func (s *Store) Appointments() ([]Appointment, error) {
	return loadTable(s, appointmentsFile, appointmentFromRow)
}

// SaveAppointments rewrites the appointments table.
func (s *Store) SaveAppointments(as []Appointment) error {
	return saveTable(s, appointmentsFile, appointmentHeader, as, Appointment.toRow)
}

// ServiceCenters loads the service centers table.
func (s *Store) ServiceCenters() ([]ServiceCenter, error) {
	return loadTable(s, serviceCentersFile, serviceCenterFromRow)
}

// SaveServiceCenters rewrites the service centers table.
func (s *Store) SaveServiceCenters(cs []ServiceCenter) error {
	return saveTable(s, serviceCentersFile, serviceCenterHeader, cs, ServiceCenter.toRow)
}

// CCPPackages loads the care-package catalog.
func (s *Store) CCPPackages() ([]CCPPackage, error) {
	return loadTable(s, ccpPackagesFile, ccpPackageFromRow)
}

// SaveCCPPackages rewrites the care-package catalog.
func (s *Store) SaveCCPPackages(ps []CCPPackage) error {
	return saveTable(s, ccpPackagesFile, ccpPackageHeader, ps, CCPPackage.toRow)
}

// Customers loads the customers table.
func (s *Store) Customers() ([]Customer, error) {
	return loadTable(s, customersFile, customerFromRow)
}

// SaveCustomers rewrites the customers table.
func (s *Store) SaveCustomers(cs []Customer) error {
	return saveTable(s, customersFile, customerHeader, cs, Customer.toRow)
}

// CustomerByID returns the customer with the given user ID, or false when
// no such account exists.
func (s *Store) CustomerByID(userID int) (Customer, bool, error) {
	cs, err := s.Customers()
	if err != nil {
		return Customer{}, false, err
	}
	for _, c := range cs {
		if c.UserID == userID {
			return c, true, nil
		}
	}
	return Customer{}, false, nil
}

// NextID returns the next identifier for a table: one past the current
// maximum, or 1 for an empty table.
func NextID[T any](recs []T, id func(T) int) int {
	max := 0
	for _, r := range recs {
		if v := id(r); v > max {
			max = v
		}
	}
	return max + 1
}
