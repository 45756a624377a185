package templates

import "haccpcore/pkg/domain"

// Built-in template identifiers.
const (
	HotFoodPreparationID = "template-1"
	ColdFoodStorageID    = "template-2"
	CoolingProcessID     = "template-3"
)

func builtin() []domain.HACCPTemplate {
	return []domain.HACCPTemplate{hotFoodPreparation(), coldFoodStorage(), coolingProcess()}
}

func hotFoodPreparation() domain.HACCPTemplate {
	return domain.HACCPTemplate{
		ID:          HotFoodPreparationID,
		Name:        "Hot Food Preparation HACCP Plan",
		Description: "A comprehensive HACCP plan for hot food preparation in restaurants and food service establishments.",
		Product:     "Hot prepared foods",
		IntendedUse: "Immediate consumption",
		ProcessFlow: []string{"Receiving", "Storage", "Preparation", "Cooking", "Hot Holding", "Serving"},
		Hazards: []domain.Hazard{
			{
				Name:        "Bacterial Pathogens",
				Type:        domain.HazardBiological,
				Description: "Salmonella, E. coli, Listeria, and other bacterial pathogens that can cause foodborne illness.",
			},
			{
				Name:        "Cross-Contamination",
				Type:        domain.HazardBiological,
				Description: "Transfer of harmful bacteria from raw foods to ready-to-eat foods.",
			},
			{
				Name:        "Time-Temperature Abuse",
				Type:        domain.HazardBiological,
				Description: "Allowing food to remain in the temperature danger zone (41°F to 135°F) for extended periods.",
			},
		},
		CriticalControlPoints: []domain.TemplateCCP{
			{
				Step:          "Cooking",
				HazardIndices: []int{0, 2},
				ControlMeasures: []domain.ControlMeasure{
					{ID: "cm-1", Description: "Cook foods to proper internal temperatures to kill pathogens."},
				},
				CriticalLimits: []domain.CriticalLimit{
					{ID: "cl-1", Parameter: "Internal Temperature", Minimum: domain.Float(165), Units: "°F"},
				},
				MonitoringProcedures: []domain.MonitoringProcedure{{
					ID:                "mp-1",
					Description:       "Check internal temperature of food using a calibrated thermometer.",
					Frequency:         "Every batch",
					ResponsiblePerson: "Cook",
				}},
				CorrectiveActions: []domain.CorrectiveAction{{
					ID:                "ca-1",
					Description:       "Continue cooking until proper temperature is reached. If proper temperature cannot be reached, discard the food.",
					ResponsiblePerson: "Cook/Manager",
				}},
				VerificationActivities: []domain.VerificationActivity{{
					ID:                "va-1",
					Description:       "Review temperature logs daily. Calibrate thermometers weekly.",
					Frequency:         "Daily/Weekly",
					ResponsiblePerson: "Manager",
				}},
				RecordkeepingProcedures: "Maintain cooking temperature logs, thermometer calibration logs, and corrective action reports.",
			},
			{
				Step:          "Hot Holding",
				HazardIndices: []int{0, 2},
				ControlMeasures: []domain.ControlMeasure{
					{ID: "cm-2", Description: "Hold hot foods at proper temperatures to prevent bacterial growth."},
				},
				CriticalLimits: []domain.CriticalLimit{
					{ID: "cl-2", Parameter: "Hot Holding Temperature", Minimum: domain.Float(135), Units: "°F"},
				},
				MonitoringProcedures: []domain.MonitoringProcedure{{
					ID:                "mp-2",
					Description:       "Check temperature of hot holding units and food items using a calibrated thermometer.",
					Frequency:         "Every 2 hours",
					ResponsiblePerson: "Cook/Server",
				}},
				CorrectiveActions: []domain.CorrectiveAction{{
					ID:                "ca-2",
					Description:       "Reheat food to 165°F if found below 135°F for less than 2 hours. Discard if below 135°F for more than 2 hours.",
					ResponsiblePerson: "Cook/Manager",
				}},
				VerificationActivities: []domain.VerificationActivity{{
					ID:                "va-2",
					Description:       "Review hot holding temperature logs daily. Verify hot holding equipment functionality.",
					Frequency:         "Daily",
					ResponsiblePerson: "Manager",
				}},
				RecordkeepingProcedures: "Maintain hot holding temperature logs, equipment maintenance records, and corrective action reports.",
			},
		},
	}
}

func coldFoodStorage() domain.HACCPTemplate {
	return domain.HACCPTemplate{
		ID:          ColdFoodStorageID,
		Name:        "Cold Food Storage HACCP Plan",
		Description: "A HACCP plan for cold food storage and preparation in food service establishments.",
		Product:     "Cold prepared and stored foods",
		IntendedUse: "Immediate consumption or storage",
		ProcessFlow: []string{"Receiving", "Cold Storage", "Preparation", "Display", "Serving"},
		Hazards: []domain.Hazard{
			{
				Name:        "Bacterial Growth",
				Type:        domain.HazardBiological,
				Description: "Growth of harmful bacteria due to improper refrigeration temperatures.",
			},
			{
				Name:        "Chemical Contamination",
				Type:        domain.HazardChemical,
				Description: "Contamination from cleaning chemicals or other chemical hazards.",
			},
			{
				Name:        "Physical Contaminants",
				Type:        domain.HazardPhysical,
				Description: "Foreign objects such as glass, metal, or plastic in food.",
			},
		},
		CriticalControlPoints: []domain.TemplateCCP{
			{
				Step:          "Cold Storage",
				HazardIndices: []int{0},
				ControlMeasures: []domain.ControlMeasure{
					{ID: "cm-1", Description: "Maintain proper refrigeration temperatures to prevent bacterial growth."},
				},
				CriticalLimits: []domain.CriticalLimit{
					{ID: "cl-1", Parameter: "Refrigeration Temperature", Maximum: domain.Float(41), Units: "°F"},
				},
				MonitoringProcedures: []domain.MonitoringProcedure{{
					ID:                "mp-1",
					Description:       "Check refrigerator temperatures using calibrated thermometers.",
					Frequency:         "Every 4 hours",
					ResponsiblePerson: "Kitchen Staff",
				}},
				CorrectiveActions: []domain.CorrectiveAction{{
					ID:                "ca-1",
					Description:       "Adjust refrigerator settings if temperature is above 41°F. Move food to functioning unit if necessary. Discard food if above 41°F for more than 4 hours.",
					ResponsiblePerson: "Manager",
				}},
				VerificationActivities: []domain.VerificationActivity{{
					ID:                "va-1",
					Description:       "Review temperature logs daily. Calibrate thermometers weekly.",
					Frequency:         "Daily/Weekly",
					ResponsiblePerson: "Manager",
				}},
				RecordkeepingProcedures: "Maintain refrigeration temperature logs, thermometer calibration logs, and corrective action reports.",
			},
			{
				Step:          "Cold Display",
				HazardIndices: []int{0},
				ControlMeasures: []domain.ControlMeasure{
					{ID: "cm-2", Description: "Maintain proper cold holding temperatures during display."},
				},
				CriticalLimits: []domain.CriticalLimit{
					{ID: "cl-2", Parameter: "Cold Holding Temperature", Maximum: domain.Float(41), Units: "°F"},
				},
				MonitoringProcedures: []domain.MonitoringProcedure{{
					ID:                "mp-2",
					Description:       "Check temperature of cold display units and food items using a calibrated thermometer.",
					Frequency:         "Every 2 hours",
					ResponsiblePerson: "Server/Manager",
				}},
				CorrectiveActions: []domain.CorrectiveAction{{
					ID:                "ca-2",
					Description:       "Adjust display unit settings if temperature is above 41°F. Move food to functioning unit if necessary. Discard food if above 41°F for more than 4 hours.",
					ResponsiblePerson: "Manager",
				}},
				VerificationActivities: []domain.VerificationActivity{{
					ID:                "va-2",
					Description:       "Review cold holding temperature logs daily. Verify cold display equipment functionality.",
					Frequency:         "Daily",
					ResponsiblePerson: "Manager",
				}},
				RecordkeepingProcedures: "Maintain cold holding temperature logs, equipment maintenance records, and corrective action reports.",
			},
		},
	}
}

func coolingProcess() domain.HACCPTemplate {
	return domain.HACCPTemplate{
		ID:          CoolingProcessID,
		Name:        "Cooling Process HACCP Plan",
		Description: "A HACCP plan for properly cooling hot foods to prevent bacterial growth during the cooling process.",
		Product:     "Cooked foods that require cooling",
		IntendedUse: "Storage and later reheating/serving",
		ProcessFlow: []string{"Cooking", "Initial Cooling", "Final Cooling", "Cold Storage", "Reheating", "Serving"},
		Hazards: []domain.Hazard{
			{
				Name:        "Bacterial Growth During Cooling",
				Type:        domain.HazardBiological,
				Description: "Growth of spore-forming bacteria like C. perfringens and B. cereus during slow cooling.",
			},
			{
				Name:        "Toxin Formation",
				Type:        domain.HazardBiological,
				Description: "Formation of heat-stable toxins during improper cooling.",
			},
		},
		CriticalControlPoints: []domain.TemplateCCP{
			{
				Step:          "Initial Cooling",
				HazardIndices: []int{0, 1},
				ControlMeasures: []domain.ControlMeasure{
					{ID: "cm-1", Description: "Rapidly cool hot foods using appropriate cooling methods."},
				},
				CriticalLimits: []domain.CriticalLimit{
					{ID: "cl-1", Parameter: "Cooling Time (135°F to 70°F)", Maximum: domain.Float(2), Units: "hours"},
				},
				MonitoringProcedures: []domain.MonitoringProcedure{{
					ID:                "mp-1",
					Description:       "Check food temperatures using a calibrated thermometer at the start of cooling and after 2 hours.",
					Frequency:         "Every cooling batch",
					ResponsiblePerson: "Cook",
				}},
				CorrectiveActions: []domain.CorrectiveAction{{
					ID:                "ca-1",
					Description:       "If food has not reached 70°F within 2 hours, reheat to 165°F and restart the cooling process using more efficient methods. If unable to cool properly, discard the food.",
					ResponsiblePerson: "Cook/Manager",
				}},
				VerificationActivities: []domain.VerificationActivity{{
					ID:                "va-1",
					Description:       "Review cooling logs daily. Verify cooling equipment functionality.",
					Frequency:         "Daily",
					ResponsiblePerson: "Manager",
				}},
				RecordkeepingProcedures: "Maintain cooling temperature logs, time records, and corrective action reports.",
			},
			{
				Step:          "Final Cooling",
				HazardIndices: []int{0, 1},
				ControlMeasures: []domain.ControlMeasure{
					{ID: "cm-2", Description: "Continue cooling process to reach safe refrigeration temperature."},
				},
				CriticalLimits: []domain.CriticalLimit{
					{ID: "cl-2", Parameter: "Cooling Time (70°F to 41°F)", Maximum: domain.Float(4), Units: "hours"},
				},
				MonitoringProcedures: []domain.MonitoringProcedure{{
					ID:                "mp-2",
					Description:       "Check food temperatures using a calibrated thermometer after initial cooling and at the end of the cooling process.",
					Frequency:         "Every cooling batch",
					ResponsiblePerson: "Cook",
				}},
				CorrectiveActions: []domain.CorrectiveAction{{
					ID:                "ca-2",
					Description:       "If food has not reached 41°F within 4 hours after reaching 70°F (total 6 hours from start), discard the food.",
					ResponsiblePerson: "Cook/Manager",
				}},
				VerificationActivities: []domain.VerificationActivity{{
					ID:                "va-2",
					Description:       "Review cooling logs daily. Verify cooling procedures are being followed correctly.",
					Frequency:         "Daily",
					ResponsiblePerson: "Manager",
				}},
				RecordkeepingProcedures: "Maintain cooling temperature logs, time records, and corrective action reports.",
			},
		},
	}
}
