package client

import (
	oneclick "github.com/defuse-protocol/one-click-sdk-go"

	"tearpay/pkg/types"
)

// Conversions from the generated SDK models into the domain types the rest of
// the application persists and renders.

func tokenFromSDK(t oneclick.TokenResponse) types.Token {
	return types.Token{
		AssetID:         t.GetAssetId(),
		Decimals:        int(t.GetDecimals()),
		Blockchain:      string(t.GetBlockchain()),
		Symbol:          t.GetSymbol(),
		Price:           float64(t.GetPrice()),
		PriceUpdatedAt:  t.GetPriceUpdatedAt(),
		ContractAddress: t.GetContractAddress(),
	}
}

func quoteResponseFromSDK(r oneclick.QuoteResponse) types.QuoteResponse {
	return types.QuoteResponse{
		Timestamp:    r.GetTimestamp(),
		Signature:    r.GetSignature(),
		QuoteRequest: quoteRequestFromSDK(r.GetQuoteRequest()),
		Quote:        quoteFromSDK(r.GetQuote()),
	}
}

func quoteRequestFromSDK(r oneclick.QuoteRequest) types.QuoteRequest {
	return types.QuoteRequest{
		Dry:               r.GetDry(),
		SwapType:          string(r.GetSwapType()),
		SlippageTolerance: int(r.GetSlippageTolerance()),
		OriginAsset:       r.GetOriginAsset(),
		DepositType:       string(r.GetDepositType()),
		DestinationAsset:  r.GetDestinationAsset(),
		Amount:            r.GetAmount(),
		RefundTo:          r.GetRefundTo(),
		RefundType:        string(r.GetRefundType()),
		Recipient:         r.GetRecipient(),
		RecipientType:     string(r.GetRecipientType()),
		Deadline:          r.GetDeadline(),
		Referral:          r.GetReferral(),
	}
}

func quoteFromSDK(q oneclick.Quote) types.Quote {
	return types.Quote{
		DepositAddress:     q.GetDepositAddress(),
		AmountIn:           q.GetAmountIn(),
		AmountInFormatted:  q.GetAmountInFormatted(),
		AmountInUSD:        q.GetAmountInUsd(),
		MinAmountIn:        q.GetMinAmountIn(),
		AmountOut:          q.GetAmountOut(),
		AmountOutFormatted: q.GetAmountOutFormatted(),
		AmountOutUSD:       q.GetAmountOutUsd(),
		MinAmountOut:       q.GetMinAmountOut(),
		Deadline:           q.GetDeadline(),
		TimeWhenInactive:   q.GetTimeWhenInactive(),
		TimeEstimate:       float64(q.GetTimeEstimate()),
	}
}

func statusFromSDK(r *oneclick.GetExecutionStatusResponse) types.ExecutionStatus {
	return types.ExecutionStatus{
		QuoteResponse: quoteResponseFromSDK(r.GetQuoteResponse()),
		Status:        types.SwapStatus(r.GetStatus()),
		UpdatedAt:     r.GetUpdatedAt(),
		SwapDetails:   swapDetailsFromSDK(r.GetSwapDetails()),
	}
}

func swapDetailsFromSDK(d oneclick.SwapDetails) types.SwapDetails {
	return types.SwapDetails{
		IntentHashes:             d.GetIntentHashes(),
		NearTxHashes:             d.GetNearTxHashes(),
		AmountIn:                 d.GetAmountIn(),
		AmountInFormatted:        d.GetAmountInFormatted(),
		AmountInUSD:              d.GetAmountInUsd(),
		AmountOut:                d.GetAmountOut(),
		AmountOutFormatted:       d.GetAmountOutFormatted(),
		AmountOutUSD:             d.GetAmountOutUsd(),
		Slippage:                 int(d.GetSlippage()),
		OriginChainTxHashes:      txDetailsFromSDK(d.GetOriginChainTxHashes()),
		DestinationChainTxHashes: txDetailsFromSDK(d.GetDestinationChainTxHashes()),
		RefundedAmount:           d.GetRefundedAmount(),
		RefundedAmountFormatted:  d.GetRefundedAmountFormatted(),
		RefundedAmountUSD:        d.GetRefundedAmountUsd(),
	}
}

func txDetailsFromSDK(txs []oneclick.TransactionDetails) []types.TransactionDetails {
	out := make([]types.TransactionDetails, 0, len(txs))
	for _, tx := range txs {
		out = append(out, types.TransactionDetails{
			Hash:        tx.GetHash(),
			ExplorerURL: tx.GetExplorerUrl(),
		})
	}
	return out
}
