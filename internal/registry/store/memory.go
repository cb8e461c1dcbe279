package store

import (
	"context"
	"sync"

	"kyc-ledger/internal/registry/models"
)

// InMemoryStore keeps the three registry collections in mutex-guarded maps.
// It is the default backend and the reference implementation of the store
// contract; all methods return copies so callers never alias live state.
type InMemoryStore struct {
	mu            sync.RWMutex
	customers     map[string]*models.Customer            // keyed by name
	customersByFP map[string]string                      // fingerprint -> name
	banks         map[string]*models.Bank                // keyed by address
	regNumbers    map[string]string                      // reg number -> address
	requests      map[string]*models.VerificationRequest // keyed by fingerprint
}

// New constructs an empty in-memory registry store.
func New() *InMemoryStore {
	return &InMemoryStore{
		customers:     make(map[string]*models.Customer),
		customersByFP: make(map[string]string),
		banks:         make(map[string]*models.Bank),
		regNumbers:    make(map[string]string),
		requests:      make(map[string]*models.VerificationRequest),
	}
}

func (s *InMemoryStore) CreateCustomer(_ context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[customer.Name]; ok {
		return ErrConflict
	}
	if _, ok := s.customersByFP[customer.Fingerprint]; ok {
		return ErrConflict
	}
	copyCustomer := *customer
	s.customers[customer.Name] = &copyCustomer
	s.customersByFP[customer.Fingerprint] = customer.Name
	return nil
}

func (s *InMemoryStore) GetCustomer(_ context.Context, name string) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	customer, ok := s.customers[name]
	if !ok {
		return nil, ErrNotFound
	}
	copyCustomer := *customer
	return &copyCustomer, nil
}

func (s *InMemoryStore) GetCustomerByFingerprint(_ context.Context, fingerprint string) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.customersByFP[fingerprint]
	if !ok {
		return nil, ErrNotFound
	}
	copyCustomer := *s.customers[name]
	return &copyCustomer, nil
}

func (s *InMemoryStore) UpdateCustomer(_ context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.customers[customer.Name]
	if !ok {
		return ErrNotFound
	}
	if customer.Fingerprint != existing.Fingerprint {
		if owner, taken := s.customersByFP[customer.Fingerprint]; taken && owner != customer.Name {
			return ErrConflict
		}
		delete(s.customersByFP, existing.Fingerprint)
		s.customersByFP[customer.Fingerprint] = customer.Name
	}
	copyCustomer := *customer
	s.customers[customer.Name] = &copyCustomer
	return nil
}

func (s *InMemoryStore) DeleteCustomer(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	customer, ok := s.customers[name]
	if !ok {
		return ErrNotFound
	}
	delete(s.customersByFP, customer.Fingerprint)
	delete(s.customers, name)
	return nil
}

func (s *InMemoryStore) ListCustomers(_ context.Context) ([]*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Customer, 0, len(s.customers))
	for _, customer := range s.customers {
		copyCustomer := *customer
		out = append(out, &copyCustomer)
	}
	return out, nil
}

func (s *InMemoryStore) CreateBank(_ context.Context, bank *models.Bank) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.banks[bank.Address]; ok {
		return ErrConflict
	}
	if _, ok := s.regNumbers[bank.RegNumber]; ok {
		return ErrConflict
	}
	copyBank := *bank
	s.banks[bank.Address] = &copyBank
	s.regNumbers[bank.RegNumber] = bank.Address
	return nil
}

func (s *InMemoryStore) GetBank(_ context.Context, address string) (*models.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bank, ok := s.banks[address]
	if !ok {
		return nil, ErrNotFound
	}
	copyBank := *bank
	return &copyBank, nil
}

func (s *InMemoryStore) UpdateBank(_ context.Context, bank *models.Bank) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.banks[bank.Address]; !ok {
		return ErrNotFound
	}
	copyBank := *bank
	s.banks[bank.Address] = &copyBank
	return nil
}

func (s *InMemoryStore) DeleteBank(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bank, ok := s.banks[address]
	if !ok {
		return ErrNotFound
	}
	delete(s.regNumbers, bank.RegNumber)
	delete(s.banks, address)
	return nil
}

func (s *InMemoryStore) ListBanks(_ context.Context) ([]*models.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Bank, 0, len(s.banks))
	for _, bank := range s.banks {
		copyBank := *bank
		out = append(out, &copyBank)
	}
	return out, nil
}

func (s *InMemoryStore) CountBanks(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.banks), nil
}

func (s *InMemoryStore) CreateRequest(_ context.Context, request *models.VerificationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[request.Fingerprint]; ok {
		return ErrConflict
	}
	copyRequest := *request
	s.requests[request.Fingerprint] = &copyRequest
	return nil
}

func (s *InMemoryStore) GetRequest(_ context.Context, fingerprint string) (*models.VerificationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	request, ok := s.requests[fingerprint]
	if !ok {
		return nil, ErrNotFound
	}
	copyRequest := *request
	return &copyRequest, nil
}

func (s *InMemoryStore) DeleteRequest(_ context.Context, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[fingerprint]; !ok {
		return ErrNotFound
	}
	delete(s.requests, fingerprint)
	return nil
}
