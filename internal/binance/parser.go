package binance

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/karta134033/trade-utils/internal/model"
)

// Kline responses are heterogeneous 12-element arrays. Only these indexes are
// consumed; the rest (volume, trade count, taker stats) are ignored.
const (
	klineOpenTimeIdx  = 0
	klineOpenIdx      = 1
	klineHighIdx      = 2
	klineLowIdx       = 3
	klineCloseIdx     = 4
	klineCloseTimeIdx = 6

	klineMinElements = 7
)

// parseKlines converts a raw kline response body into a sorted kline slice.
//
// The exchange does not guarantee ordering once the caller merges multiple
// pages, so the batch is always sorted ascending by close timestamp before it
// is returned.
func parseKlines(data []byte) ([]model.Kline, error) {
	var rows [][]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: kline response is not an array of arrays: %v", ErrMalformedResponse, err)
	}

	klines := make([]model.Kline, 0, len(rows))
	for i, row := range rows {
		kline, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("kline row %d: %w", i, err)
		}
		klines = append(klines, kline)
	}

	sort.Slice(klines, func(i, j int) bool {
		return klines[i].CloseTime < klines[j].CloseTime
	})

	return klines, nil
}

// parseKline extracts one kline from a raw exchange array. Missing or
// wrong-typed elements fail with an error naming the offending index and the
// raw value; nothing is silently defaulted.
func parseKline(row []any) (model.Kline, error) {
	if len(row) < klineMinElements {
		return model.Kline{}, fmt.Errorf("%w: kline array has %d elements, need at least %d",
			ErrMalformedResponse, len(row), klineMinElements)
	}

	openTime, err := klineIntAt(row, klineOpenTimeIdx)
	if err != nil {
		return model.Kline{}, err
	}
	open, err := klineFloatAt(row, klineOpenIdx)
	if err != nil {
		return model.Kline{}, err
	}
	high, err := klineFloatAt(row, klineHighIdx)
	if err != nil {
		return model.Kline{}, err
	}
	low, err := klineFloatAt(row, klineLowIdx)
	if err != nil {
		return model.Kline{}, err
	}
	closePrice, err := klineFloatAt(row, klineCloseIdx)
	if err != nil {
		return model.Kline{}, err
	}
	closeTime, err := klineIntAt(row, klineCloseTimeIdx)
	if err != nil {
		return model.Kline{}, err
	}

	if closeTime < openTime {
		return model.Kline{}, fmt.Errorf("%w: close time %d precedes open time %d",
			ErrMalformedResponse, closeTime, openTime)
	}

	return model.Kline{
		OpenTime:  openTime,
		CloseTime: closeTime,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
	}, nil
}

// klineIntAt reads an integer timestamp element. JSON numbers decode to
// float64, so the value is range-checked before conversion.
func klineIntAt(row []any, idx int) (int64, error) {
	num, ok := row[idx].(float64)
	if !ok {
		return 0, fmt.Errorf("%w: index %d: expected integer, got %T (%v)",
			ErrMalformedResponse, idx, row[idx], row[idx])
	}
	return int64(num), nil
}

// klineFloatAt reads a numeric-string element (prices are encoded as strings
// to preserve precision on the wire).
func klineFloatAt(row []any, idx int) (float64, error) {
	str, ok := row[idx].(string)
	if !ok {
		return 0, fmt.Errorf("%w: index %d: expected numeric string, got %T (%v)",
			ErrMalformedResponse, idx, row[idx], row[idx])
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: index %d: %q is not numeric", ErrMalformedResponse, idx, str)
	}
	return val, nil
}

// rawAsset mirrors one entry of the account endpoint's "assets" array.
// Balances arrive as numeric strings; validation rejects anything that would
// not survive the strconv conversion below.
type rawAsset struct {
	Asset            string `json:"asset" validate:"required"`
	WalletBalance    string `json:"walletBalance" validate:"required,numeric"`
	AvailableBalance string `json:"availableBalance" validate:"required,numeric"`
	UpdateTime       int64  `json:"updateTime" validate:"required"`
}

// rawPosition mirrors one entry of the account endpoint's "positions" array.
type rawPosition struct {
	Symbol           string `json:"symbol" validate:"required"`
	UnrealizedProfit string `json:"unrealizedProfit" validate:"required,numeric"`
	Leverage         string `json:"leverage" validate:"required,numeric"`
	EntryPrice       string `json:"entryPrice" validate:"required,numeric"`
	PositionSide     string `json:"positionSide" validate:"required"`
	PositionAmt      string `json:"positionAmt" validate:"required,numeric"`
}

type rawAccount struct {
	Assets    []rawAsset    `json:"assets" validate:"required,dive"`
	Positions []rawPosition `json:"positions" validate:"required,dive"`
}

// parseAccount converts an account response body into an Account snapshot.
//
// Assets with a zero available balance and positions with a zero amount are
// dropped so the snapshot reflects only active holdings. There is no partial
// success: any malformed entry fails the whole call.
func parseAccount(data []byte, validate *validator.Validate) (model.Account, error) {
	var raw rawAccount
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Account{}, fmt.Errorf("%w: account response: %v", ErrMalformedResponse, err)
	}
	if err := validate.Struct(&raw); err != nil {
		return model.Account{}, fmt.Errorf("%w: account response: %v", ErrMalformedResponse, err)
	}

	var account model.Account
	for _, a := range raw.Assets {
		walletBalance, err := strconv.ParseFloat(a.WalletBalance, 64)
		if err != nil {
			return model.Account{}, fmt.Errorf("%w: asset %s: walletBalance %q is not numeric",
				ErrMalformedResponse, a.Asset, a.WalletBalance)
		}
		availableBalance, err := strconv.ParseFloat(a.AvailableBalance, 64)
		if err != nil {
			return model.Account{}, fmt.Errorf("%w: asset %s: availableBalance %q is not numeric",
				ErrMalformedResponse, a.Asset, a.AvailableBalance)
		}
		if availableBalance == 0 {
			continue
		}
		account.Assets = append(account.Assets, model.Asset{
			Asset:            a.Asset,
			WalletBalance:    walletBalance,
			AvailableBalance: availableBalance,
			UpdateTime:       a.UpdateTime,
		})
	}

	for _, p := range raw.Positions {
		unrealizedProfit, err := strconv.ParseFloat(p.UnrealizedProfit, 64)
		if err != nil {
			return model.Account{}, fmt.Errorf("%w: position %s: unrealizedProfit %q is not numeric",
				ErrMalformedResponse, p.Symbol, p.UnrealizedProfit)
		}
		leverage, err := strconv.ParseUint(p.Leverage, 10, 64)
		if err != nil {
			return model.Account{}, fmt.Errorf("%w: position %s: leverage %q is not an unsigned integer",
				ErrMalformedResponse, p.Symbol, p.Leverage)
		}
		entryPrice, err := strconv.ParseFloat(p.EntryPrice, 64)
		if err != nil {
			return model.Account{}, fmt.Errorf("%w: position %s: entryPrice %q is not numeric",
				ErrMalformedResponse, p.Symbol, p.EntryPrice)
		}
		positionAmt, err := strconv.ParseFloat(p.PositionAmt, 64)
		if err != nil {
			return model.Account{}, fmt.Errorf("%w: position %s: positionAmt %q is not numeric",
				ErrMalformedResponse, p.Symbol, p.PositionAmt)
		}
		if positionAmt == 0 {
			continue
		}
		account.Positions = append(account.Positions, model.Position{
			Symbol:           p.Symbol,
			UnrealizedProfit: unrealizedProfit,
			Leverage:         leverage,
			EntryPrice:       entryPrice,
			PositionSide:     p.PositionSide,
			PositionAmt:      positionAmt,
		})
	}

	return account, nil
}

// Filter types consumed from the exchange metadata endpoint. Filters of any
// other type are ignored.
const (
	priceFilterType = "PRICE_FILTER"
	lotSizeFilter   = "LOT_SIZE"
)

// Symbol gating values: only actively tradable perpetual contracts are kept.
const (
	statusTrading     = "TRADING"
	contractPerpetual = "PERPETUAL"
)

type rawFilter struct {
	FilterType string `json:"filterType" validate:"required"`
	TickSize   string `json:"tickSize"`
	StepSize   string `json:"stepSize"`
	MinQty     string `json:"minQty"`
}

type rawSymbol struct {
	Symbol       string      `json:"symbol" validate:"required"`
	Status       string      `json:"status" validate:"required"`
	ContractType string      `json:"contractType"`
	Filters      []rawFilter `json:"filters" validate:"dive"`
}

type rawExchangeInfo struct {
	Symbols []rawSymbol `json:"symbols" validate:"required,dive"`
}

// parseInstruments filters the full exchange symbol list down to the
// requested set and extracts each instrument's trading constraints from its
// filter list.
//
// Tick and lot sizes are kept as the original decimal strings; see
// model.InstrumentInfo. Requested symbols that are absent, not trading, or
// not perpetual contracts are simply missing from the result, not an error.
func parseInstruments(data []byte, requested map[string]bool, validate *validator.Validate) (map[string]model.InstrumentInfo, error) {
	var raw rawExchangeInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: exchange info response: %v", ErrMalformedResponse, err)
	}
	if err := validate.Struct(&raw); err != nil {
		return nil, fmt.Errorf("%w: exchange info response: %v", ErrMalformedResponse, err)
	}

	instruments := make(map[string]model.InstrumentInfo, len(requested))
	for _, s := range raw.Symbols {
		if s.Status != statusTrading || s.ContractType != contractPerpetual || !requested[s.Symbol] {
			continue
		}

		info := model.InstrumentInfo{Symbol: s.Symbol}
		for _, f := range s.Filters {
			switch f.FilterType {
			case priceFilterType:
				info.TickSize = f.TickSize
			case lotSizeFilter:
				info.LotSize = f.StepSize
				minQty, err := strconv.ParseFloat(f.MinQty, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: symbol %s: minQty %q is not numeric",
						ErrMalformedResponse, s.Symbol, f.MinQty)
				}
				info.MinQty = minQty
			}
		}

		if info.TickSize == "" || info.LotSize == "" {
			log.Warn().Str("symbol", s.Symbol).Msg("instrument missing price or lot size filter")
		}
		instruments[s.Symbol] = info
	}

	return instruments, nil
}
