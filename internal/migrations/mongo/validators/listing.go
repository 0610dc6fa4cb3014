package validators

import "go.mongodb.org/mongo-driver/bson"

var ServiceListingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"category",
			"name",
			"price",
			"duration_estimate",
			"description",
			"provider_email",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"category": bson.M{
				"bsonType": "string",
				"enum": []string{
					"plumbing",
					"electrical",
					"ac",
					"carpentry",
					"bathroom",
					"geyser",
					"washing-machine",
					"television",
					"pest-control",
					"sofa-carpet",
					"home-cleaning",
				},
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 100,
			},

			"price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"duration_estimate": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},

			"description": bson.M{
				"bsonType":  "string",
				"minLength": 10,
				"maxLength": 2000,
			},

			"provider_email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"is_available": bson.M{
				"bsonType": []string{"bool", "null"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
