package app

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fd1az/circlepath-bot/business/market/domain"
	"github.com/fd1az/circlepath-bot/internal/apperror"
)

// BookStore holds the latest order book per symbol.
//
// Symbols are keyed lowercase, so lookups are case-insensitive. Installing a
// book replaces the previous snapshot for that symbol entirely; concurrent
// writers race benignly with last-write-wins.
type BookStore struct {
	mu       sync.RWMutex
	books    map[string]*domain.Book
	symbols  map[string]domain.SymbolInfo
	makerFee decimal.Decimal
}

// NewBookStore creates an empty store. makerFee is deducted from spot
// conversions done through ConvertAmount.
func NewBookStore(makerFee decimal.Decimal) *BookStore {
	return &BookStore{
		books:    make(map[string]*domain.Book),
		symbols:  make(map[string]domain.SymbolInfo),
		makerFee: makerFee,
	}
}

// SetSymbolInfos installs the symbol metadata used for conversions and
// transition lookups.
func (s *BookStore) SetSymbolInfos(infos []domain.SymbolInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, info := range infos {
		s.symbols[info.Key()] = info
	}
}

// SymbolInfo returns the metadata for a symbol, if known.
func (s *BookStore) SymbolInfo(symbol string) (domain.SymbolInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.symbols[strings.ToLower(symbol)]
	return info, ok
}

// SymbolInfos returns all known symbol metadata.
func (s *BookStore) SymbolInfos() []domain.SymbolInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SymbolInfo, 0, len(s.symbols))
	for _, info := range s.symbols {
		out = append(out, info)
	}
	return out
}

// ReplaceBook installs a new snapshot for the symbol, sorting its sides.
func (s *BookStore) ReplaceBook(symbol string, book *domain.Book) {
	book.Sort()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[strings.ToLower(symbol)] = book
}

// Book returns the current snapshot for the symbol, if present.
func (s *BookStore) Book(symbol string) (*domain.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	book, ok := s.books[strings.ToLower(symbol)]
	return book, ok
}

// Symbols returns the symbols that currently have a snapshot.
func (s *BookStore) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.books))
	for sym := range s.books {
		out = append(out, sym)
	}
	return out
}

// Len returns the number of stored books.
func (s *BookStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// Export serializes all books as a JSON map keyed by lowercase symbol.
func (s *BookStore) Export() ([]byte, error) {
	s.mu.RLock()
	snapshot := make(map[string]*domain.Book, len(s.books))
	for sym, book := range s.books {
		snapshot[sym] = book
	}
	s.mu.RUnlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to export order books")
	}
	return data, nil
}

// Import replaces the store contents with a previously exported snapshot.
// Level ordering is not trusted from the wire: every book is re-sorted.
func (s *BookStore) Import(data []byte) error {
	var snapshot map[string]*domain.Book
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return apperror.Wrap(err, apperror.CodeSnapshotCorrupted, "failed to parse order book snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = make(map[string]*domain.Book, len(snapshot))
	for sym, book := range snapshot {
		if book == nil {
			continue
		}
		book.Sort()
		s.books[strings.ToLower(sym)] = book
	}
	return nil
}

// ConvertAmount converts an amount between two assets using the direct symbol
// between them at the current best bid or ask, deducting the maker fee.
// Same-asset conversions pass through unchanged. Only direct symbols are
// considered; multi-hop conversion is the caller's problem.
func (s *BookStore) ConvertAmount(amount decimal.Decimal, fromAsset, toAsset string) (decimal.Decimal, error) {
	if fromAsset == toAsset {
		return amount, nil
	}

	feeFactor := decimal.NewFromInt(1).Sub(s.makerFee)

	// Selling fromAsset as base: hit the best bid.
	if book, ok := s.Book(fromAsset + toAsset); ok {
		bid := book.BestBid()
		if bid == nil {
			return decimal.Zero, apperror.New(apperror.CodeEmptyOrderBook,
				apperror.WithContext(fromAsset+toAsset))
		}
		return amount.Mul(bid.Price).Mul(feeFactor), nil
	}

	// Buying toAsset as base: lift the best ask.
	if book, ok := s.Book(toAsset + fromAsset); ok {
		ask := book.BestAsk()
		if ask == nil {
			return decimal.Zero, apperror.New(apperror.CodeEmptyOrderBook,
				apperror.WithContext(toAsset+fromAsset))
		}
		return amount.Div(ask.Price).Mul(feeFactor), nil
	}

	return decimal.Zero, apperror.New(apperror.CodeConversionFailed,
		apperror.WithContext(fromAsset+" -> "+toAsset))
}
