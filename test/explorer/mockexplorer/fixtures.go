package mockexplorer

// Fixtures holds one canned data member per explorer operation. The fake
// explorer binary answers every query from it.
var Fixtures = map[string]string{
	"Address": `{"address":{"id":"ca1qh9u0nxmnfg7af8ycuygx57p5xgzmnmgtaeer9xun7hly6mlgt3pj2xk344","delegation":{"id":"f1a3c4"}}}`,

	"AllStakePools": `{"allStakePools":{"edges":[
		{"node":{"id":"f1a3c4"}},
		{"node":{"id":"0b2e7d"}},
		{"node":{"id":"9c8d11"}}
	],"totalCount":3}}`,

	"AllBlocks": `{"allBlocks":{"edges":[
		{"node":{"id":"b1","chainLength":"11","date":{"epoch":{"id":"0"},"slot":"10"}}},
		{"node":{"id":"b2","chainLength":"12","date":{"epoch":{"id":"0"},"slot":"11"}}}
	],"totalCount":12}}`,

	"BlocksByChainLength": `{"blocksByChainLength":[
		{"id":"b2","chainLength":"12","date":{"epoch":{"id":"0"},"slot":"11"}}
	]}`,

	"Epoch": `{"epoch":{"id":"0","firstBlock":{"id":"b0"},"lastBlock":{"id":"b2"},"totalBlocks":12,
		"blocks":{"edges":[{"node":{"id":"b0"}},{"node":{"id":"b1"}}],"totalCount":12}}}`,

	"StakePool": `{"stakePool":{"id":"f1a3c4","blocks":{"edges":[{"node":{"id":"b1"}}],"totalCount":1}}}`,

	"Settings": `{"settings":{"fees":{"constant":"2","coefficient":"1","certificate":"4"},"epochStabilityDepth":"10"}}`,

	"AllVotePlans": `{"allVotePlans":{"edges":[{"node":{
		"id":"vp1",
		"voteStart":{"epoch":{"id":"1"},"slot":"0"},
		"voteEnd":{"epoch":{"id":"2"},"slot":"0"},
		"committeeEnd":{"epoch":{"id":"3"},"slot":"0"},
		"payloadType":"PUBLIC",
		"proposals":[{"proposalId":"p1"},{"proposalId":"p2"}]
	}}],"totalCount":1}}`,

	"TransactionById": `{"transaction":{"id":"tx1",
		"blocks":[{"id":"b2","chainLength":"12","date":{"epoch":{"id":"0"},"slot":"11"}}],
		"inputs":[{"amount":"100","address":{"id":"ca1a"}}],
		"outputs":[{"amount":"98","address":{"id":"ca1b"}}]}}`,

	"LastBlock": `{"status":{"latestBlock":{"id":"b2","chainLength":"12","date":{"epoch":{"id":"0"},"slot":"11"}}}}`,
}

// ServeFixtures answers every operation in Fixtures forever.
func (s *Server) ServeFixtures() *Server {
	for op, data := range Fixtures {
		s.On(op).Forever().Respond(Data(data))
	}
	return s
}
