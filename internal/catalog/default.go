package catalog

// Stage names for the built-in catalogs.
const (
	StageOnboarding         = "Onboarding"
	StageDesignFinalization = "Design Finalization"
	StageProduction         = "Production"
	StageInstallation       = "Installation"
	StageHandover           = "Handover"

	LeadStageNew              = "New"
	LeadStageContacted        = "Contacted"
	LeadStageMeetingScheduled = "Meeting Scheduled"
	LeadStageProposalSent     = "Proposal Sent"
	LeadStageNegotiation      = "Negotiation"
	LeadStageWon              = "Won"
)

// DefaultDefinition is the hand-authored catalog for the interior-design
// workflow. It is fixed configuration, not user-editable at runtime.
func DefaultDefinition() Definition {
	return Definition{
		Stages: map[EntityType][]string{
			EntityTypeLead: {
				LeadStageNew,
				LeadStageContacted,
				LeadStageMeetingScheduled,
				LeadStageProposalSent,
				LeadStageNegotiation,
				LeadStageWon,
			},
			EntityTypeProject: {
				StageOnboarding,
				StageDesignFinalization,
				StageProduction,
				StageInstallation,
				StageHandover,
			},
		},
		Groups: []MilestoneGroup{
			{
				ID:            "kickoff",
				Name:          "Client Kickoff",
				Stage:         StageOnboarding,
				AdvancesStage: true,
				SubStages: []SubStage{
					{ID: "booking_confirmation", Label: "Booking Confirmation", Kind: KindBoolean, TATDays: 1},
					{ID: "welcome_call", Label: "Welcome Call", Kind: KindBoolean, TATDays: 2},
					{ID: "requirement_briefing", Label: "Requirement Briefing", Kind: KindBoolean, TATDays: 3},
				},
			},
			{
				ID:            "design",
				Name:          "Design Development",
				Stage:         StageDesignFinalization,
				AdvancesStage: true,
				SubStages: []SubStage{
					{ID: "site_measurement", Label: "Site Measurement", Kind: KindBoolean, TATDays: 4},
					{ID: "design_meeting_1", Label: "Design Meeting 1", Kind: KindBoolean, TATDays: 7},
					{ID: "design_meeting_2", Label: "Design Meeting 2", Kind: KindBoolean, TATDays: 7},
					{ID: "design_sign_off", Label: "Design Sign-off", Kind: KindBoolean, TATDays: 3},
				},
			},
			{
				ID:    "costing",
				Name:  "Costing & Contract",
				Stage: StageDesignFinalization,
				SubStages: []SubStage{
					{ID: "quotation_shared", Label: "Quotation Shared", Kind: KindBoolean, TATDays: 2},
					{ID: "contract_signed", Label: "Contract Signed", Kind: KindBoolean, TATDays: 3},
				},
			},
			{
				ID:    "procurement",
				Name:  "Material Procurement",
				Stage: StageProduction,
				SubStages: []SubStage{
					{ID: "material_order", Label: "Material Order Placed", Kind: KindBoolean, TATDays: 5},
				},
			},
			{
				ID:            "factory",
				Name:          "Factory Production",
				Stage:         StageProduction,
				AdvancesStage: true,
				SubStages: []SubStage{
					{ID: "modular_production", Label: "Modular Production", Kind: KindPercentage, TATDays: 21},
					{ID: "site_work", Label: "Site Work", Kind: KindPercentage, TATDays: 14},
					{ID: "quality_check", Label: "Quality Check", Kind: KindBoolean, TATDays: 2},
				},
			},
			{
				ID:            "install",
				Name:          "Site Installation",
				Stage:         StageInstallation,
				AdvancesStage: true,
				SubStages: []SubStage{
					{ID: "material_dispatch", Label: "Material Dispatch", Kind: KindBoolean, TATDays: 3},
					{ID: "installation_progress", Label: "Installation Progress", Kind: KindPercentage, TATDays: 10},
					{ID: "snag_resolution", Label: "Snag Resolution", Kind: KindBoolean, TATDays: 4},
				},
			},
			{
				ID:    "handover",
				Name:  "Project Handover",
				Stage: StageHandover,
				SubStages: []SubStage{
					{ID: "final_cleaning", Label: "Final Cleaning", Kind: KindBoolean, TATDays: 2},
					{ID: "client_walkthrough", Label: "Client Walkthrough", Kind: KindBoolean, TATDays: 1},
					{ID: "project_handover", Label: "Project Handover", Kind: KindBoolean, TATDays: 1},
				},
			},
		},
	}
}

// Default builds the built-in catalog. It panics on an invalid built-in
// definition, which can only mean a programming error.
func Default() *Catalog {
	c, err := New(DefaultDefinition())
	if err != nil {
		panic(err)
	}
	return c
}
